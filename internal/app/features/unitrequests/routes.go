// internal/app/features/unitrequests/routes.go
package unitrequests

import (
	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the approval queue at /unit-requests. Staff may read the
// queue; resolving a request is limited to admins.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin))
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/reject", h.HandleReject)
	})
	return r
}
