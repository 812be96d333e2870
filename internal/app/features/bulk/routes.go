// internal/app/features/bulk/routes.go
package bulk

import (
	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/dalemusser/compoundhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the bulk action routes at /bulk. Both actions are admin
// only. A nil limiter disables per-actor rate limiting.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	if limiter != nil {
		r.Use(limiter.PerActor)
	}
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin))
		pr.Post("/notify", h.HandleNotify)
		pr.Post("/suspend", h.HandleSuspend)
	})
	return r
}
