// internal/app/features/residents/routes.go
package residents

import (
	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the resident routes. Typically:
// r.Mount("/users", residents.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
	})

	// Destructive actions are limited to admins.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin))
		pr.Post("/{id}/delete", h.HandleDelete)
		pr.Post("/{id}/remove", h.HandleRemove)
	})

	return r
}
