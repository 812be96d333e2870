// internal/app/features/units/list.go
package units

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	unitstore "github.com/dalemusser/compoundhub/internal/app/store/units"
	"github.com/dalemusser/compoundhub/internal/app/system/listing"
	"github.com/dalemusser/compoundhub/internal/app/system/normalize"
	"github.com/dalemusser/compoundhub/internal/app/system/occupancy"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listResponse struct {
	Items     []occupancy.UnitOccupancy `json:"items"`
	Next      string                    `json:"next,omitempty"`
	HasMore   bool                      `json:"has_more"`
	Searching bool                      `json:"searching"`
	Term      string                    `json:"term,omitempty"`
	Field     string                    `json:"field,omitempty"`
}

type occupancyResponse struct {
	Items   []occupancy.UnitOccupancy `json:"items"`
	Summary occupancy.Summary         `json:"summary"`
	Capped  bool                      `json:"capped"`
}

// searchField defaults to the unit number.
func searchField(r *http.Request) string {
	if f := normalize.Token(query.Get(r, "field")); f != "" {
		return f
	}
	return unitstore.FieldUnitNum
}

// index builds the membership index of the project from its current members,
// bounded by the directory cap.
func (h *Handler) index(ctx context.Context, projectID primitive.ObjectID) (*occupancy.Index, error) {
	users, err := h.Users.ListByProject(ctx, projectID, h.Directory)
	if err != nil {
		return nil, err
	}
	return occupancy.Build(users, projectID), nil
}

// ServeList handles GET /units.
//
// Without a search term (or with one shorter than the minimum) it returns the
// browse page after the "after" cursor; otherwise the prefix matches on the
// selected field.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := project.FromRequest(r)
	field := searchField(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "unit list")
	defer cancel()

	src := projectSource{store: h.Units, projectID: p.ID, field: field}
	res, err := listing.Fetch[models.Unit](ctx, src, listing.Request{
		After: query.Get(r, "after"),
		Term:  normalize.QueryParam(query.Get(r, "q")),
	}, h.Options)
	if errors.Is(err, unitstore.ErrBadField) {
		uierrors.WriteFieldError(w, "field", "field is not searchable")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "unit list failed", err, "A database error occurred.")
		return
	}

	idx, err := h.index(ctx, p.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership index failed", err, "A database error occurred.")
		return
	}

	out := listResponse{
		Items:     occupancy.Enrich(res.Items, idx),
		Next:      res.Next,
		HasMore:   res.HasMore,
		Searching: res.Searching,
		Term:      res.Term,
	}
	if res.Searching {
		out.Field = field
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}

// ServeOccupancy handles GET /units/occupancy: every unit of the project (up
// to the directory cap) with occupancy and a summary.
func (h *Handler) ServeOccupancy(w http.ResponseWriter, r *http.Request) {
	p := project.FromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "unit occupancy")
	defer cancel()

	all, err := h.Units.ListByProject(ctx, p.ID, h.Directory)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "unit load failed", err, "A database error occurred.")
		return
	}
	idx, err := h.index(ctx, p.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership index failed", err, "A database error occurred.")
		return
	}

	enriched := occupancy.Enrich(all, idx)
	uierrors.WriteJSON(w, http.StatusOK, occupancyResponse{
		Items:   enriched,
		Summary: occupancy.Summarize(enriched),
		Capped:  len(all) >= h.Directory,
	})
}
