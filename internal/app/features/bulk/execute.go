// internal/app/features/bulk/execute.go
package bulk

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/store/audit"
	"github.com/dalemusser/compoundhub/internal/app/system/authz"
	"github.com/dalemusser/compoundhub/internal/app/system/bulkaction"
	"github.com/dalemusser/compoundhub/internal/app/system/normalize"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
)

type actionRequest struct {
	Target  bulkaction.Target  `json:"target"`
	Payload bulkaction.Payload `json:"payload"`
}

type actionResponse struct {
	bulkaction.Result
	Summary string `json:"summary"`
}

// HandleNotify handles POST /bulk/notify.
func (h *Handler) HandleNotify(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, bulkaction.ActionNotify, audit.EventBulkNotify)
}

// HandleSuspend handles POST /bulk/suspend.
func (h *Handler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, bulkaction.ActionSuspend, audit.EventBulkSuspend)
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, action, eventType string) {
	var in actionRequest
	if err := httputil.BindJSONAllowUnknown(r, &in); err != nil {
		uierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p := project.FromRequest(r)
	_, _, actor, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "bulk "+action)
	defer cancel()

	res, err := h.Exec.Execute(ctx, bulkaction.Request{
		ProjectID: p.ID,
		ActorID:   actor,
		Target:    in.Target,
		Action:    action,
		Payload:   in.Payload,
	})
	var verr *bulkaction.ValidationError
	if errors.As(err, &verr) {
		uierrors.WriteFieldError(w, verr.Field, verr.Msg)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "bulk "+action+" failed", err, "Unable to load occupants.")
		return
	}

	if !res.NoOp {
		h.AuditLog.BulkAction(ctx, r, p.ID, actor, eventType, res.BatchID, targetLabel(in.Target),
			res.SuccessCount, res.FailureCount)
	}
	uierrors.WriteJSON(w, http.StatusOK, actionResponse{Result: res, Summary: res.Summary()})
}

// targetLabel renders a target for the audit trail.
func targetLabel(t bulkaction.Target) string {
	if t.Kind == bulkaction.KindUnit {
		return models.UnitIdentifier(normalize.UnitPart(t.BuildingNum), normalize.UnitPart(t.UnitNum))
	}
	return "building " + normalize.UnitPart(t.BuildingNum)
}
