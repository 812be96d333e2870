// internal/app/features/unitrequests/resolve.go
package unitrequests

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/system/authz"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/compoundhub/internal/app/system/unitapproval"
	"github.com/dalemusser/waffle/httputil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type rejectRequest struct {
	Reason string `json:"reason"`
}

type resolveResponse struct {
	unitapproval.Outcome
	Message string `json:"message"`
}

// HandleApprove handles POST /unit-requests/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	p := project.FromRequest(r)
	_, _, actor, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "approve unit request")
	defer cancel()

	out, err := h.Machine.Approve(ctx, p.ID, id, actor)
	if !out.Request.ID.IsZero() {
		// The request is approved even when a later step failed.
		h.AuditLog.UnitRequestApproved(ctx, r, p.ID, actor, out.Request.UserID, id, out.Request.Unit, out.Notified)
	}
	if err != nil {
		h.writeErr(w, r, "approve unit request failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, resolveResponse{Outcome: out, Message: out.Message()})
}

// HandleReject handles POST /unit-requests/{id}/reject with {"reason": "..."}.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	var in rejectRequest
	if err := httputil.BindJSONAllowUnknown(r, &in); err != nil {
		uierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p := project.FromRequest(r)
	_, _, actor, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "reject unit request")
	defer cancel()

	out, err := h.Machine.Reject(ctx, p.ID, id, actor, in.Reason)
	if !out.Request.ID.IsZero() {
		h.AuditLog.UnitRequestRejected(ctx, r, p.ID, actor, out.Request.UserID, id, out.Request.Unit,
			out.Request.RejectionReason, out.Notified)
	}
	if err != nil {
		h.writeErr(w, r, "reject unit request failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, resolveResponse{Outcome: out, Message: out.Message()})
}

func requestID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, http.StatusBadRequest, "bad request id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	var verr *unitapproval.ValidationError
	switch {
	case errors.As(err, &verr):
		uierrors.WriteFieldError(w, verr.Field, verr.Msg)
	case errors.Is(err, unitapproval.ErrNotFound):
		uierrors.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, unitapproval.ErrAlreadyResolved):
		uierrors.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, logMsg, err, "Unable to resolve the request.")
	}
}
