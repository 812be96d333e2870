// internal/app/features/unitrequests/list.go
package unitrequests

import (
	"net/http"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	unitrequeststore "github.com/dalemusser/compoundhub/internal/app/store/unitrequests"
	"github.com/dalemusser/compoundhub/internal/app/system/normalize"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Status string               `json:"status"`
	Items  []models.UnitRequest `json:"items"`
}

// ServeList handles GET /unit-requests. status defaults to pending; "all"
// lists every status.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	status := normalize.Token(query.Get(r, "status"))
	switch status {
	case "":
		status = models.StatusPending
	case "all", models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		uierrors.WriteFieldError(w, "status", "unknown status")
		return
	}

	p := project.FromRequest(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "unit request list")
	defer cancel()

	items, err := h.Requests.List(ctx, p.ID, normalize.Filter(status), unitrequeststore.DefaultListLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "unit request list failed", err, "A database error occurred.")
		return
	}
	if items == nil {
		items = []models.UnitRequest{}
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Status: status, Items: items})
}
