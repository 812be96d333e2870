// internal/app/features/residents/list.go
package residents

import (
	"net/http"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/system/listing"
	"github.com/dalemusser/compoundhub/internal/app/system/normalize"
	"github.com/dalemusser/compoundhub/internal/app/system/paging"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// parseQuery reads the list filters from the query string.
func parseQuery(r *http.Request) listing.UserQuery {
	deleted := normalize.Token(query.Get(r, "deleted"))
	if deleted == "" {
		deleted = listing.DeletedExclude
	}
	return listing.UserQuery{
		Deleted:      deleted,
		Search:       normalize.QueryParam(query.Get(r, "q")),
		Approval:     normalize.Filter(query.Get(r, "approval")),
		Registration: normalize.Filter(query.Get(r, "registration")),
		Migration:    normalize.Filter(query.Get(r, "migration")),
		Role:         normalize.Filter(query.Get(r, "role")),
		Building:     normalize.UnitPart(query.Get(r, "building")),
	}
}

// ServeList handles GET /users.
//
// The project directory (bounded by the directory cap) is loaded once and
// filtered and paged in memory.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := project.FromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "resident directory")
	defer cancel()

	users, err := h.Users.Directory(ctx, p.ID, h.Directory)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load directory failed", err, "A database error occurred.")
		return
	}
	capped := len(users) >= h.Directory
	if capped {
		h.Log.Warn("resident directory hit cap",
			zap.String("project_id", p.ID.Hex()),
			zap.Int("cap", h.Directory))
	}

	filtered := listing.Apply(users, listing.UserFilters(parseQuery(r), p.ID)...)
	pg := listing.Paginate(filtered,
		paging.ParsePage(r),
		paging.ParsePageSize(r, listing.PageSizes, listing.DefaultPageSize))

	rows := make([]residentRow, 0, len(pg.Items))
	for _, u := range pg.Items {
		rows = append(rows, toRow(u, p.ID))
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Items:      rows,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		Total:      pg.Total,
		TotalPages: pg.TotalPages,
		Capped:     capped,
	})
}
