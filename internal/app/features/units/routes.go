// internal/app/features/units/routes.go
package units

import (
	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the unit routes at /units.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/occupancy", h.ServeOccupancy)
	})
	return r
}
