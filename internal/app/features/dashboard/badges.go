// internal/app/features/dashboard/badges.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/system/authz"
	"github.com/dalemusser/compoundhub/internal/app/system/badges"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type badgesResponse struct {
	ProjectID string `json:"project_id"`
	badges.Counts
}

// ServeBadges handles GET /dashboard/badges.
//
// Sources are fetched fresh except device resets, which come from the live
// watcher once it has counted. A source that fails to load contributes zero
// instead of failing the response. Super-admin-only sources are not read at
// all for other roles.
func (h *Handler) ServeBadges(w http.ResponseWriter, r *http.Request) {
	p := project.FromRequest(r)
	viewer := badges.Viewer{SuperAdmin: authz.IsSuperAdmin(r)}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard badges")
	defer cancel()

	sources, live := h.liveSources(p.ID, h.Registry.VisibleSources(viewer))
	snap := badges.Snapshot(h.Queues.FetchAll(ctx, p.ID, sources, h.Log))
	counts := h.Registry.AggregateLive(snap, live, viewer)

	uierrors.WriteJSON(w, http.StatusOK, badgesResponse{ProjectID: p.ID.Hex(), Counts: counts})
}

// liveSources drops the sources served by a live counter and returns their
// counts.
func (h *Handler) liveSources(projectID primitive.ObjectID, sources []string) ([]string, badges.Live) {
	if h.DeviceResets == nil {
		return sources, nil
	}
	n, ok := h.DeviceResets.PendingFor(projectID)
	if !ok {
		return sources, nil
	}
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		if src != badges.SourceDeviceResets {
			out = append(out, src)
		}
	}
	return out, badges.Live{badges.SourceDeviceResets: n}
}
