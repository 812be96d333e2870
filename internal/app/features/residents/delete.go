// internal/app/features/residents/delete.go
package residents

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	userstore "github.com/dalemusser/compoundhub/internal/app/store/users"
	"github.com/dalemusser/compoundhub/internal/app/system/authz"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type actionResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// loadMember resolves {id} to a user holding a membership in the active
// project. It writes the error response and returns false otherwise.
func (h *Handler) loadMember(w http.ResponseWriter, r *http.Request, p *project.Info) (models.User, bool) {
	uid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, http.StatusBadRequest, "bad user id")
		return models.User{}, false
	}
	u, err := h.Users.GetByID(r.Context(), uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.WriteError(w, http.StatusNotFound, "user not found")
		return models.User{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "A database error occurred.")
		return models.User{}, false
	}
	if len(u.MembershipsIn(p.ID)) == 0 {
		uierrors.WriteError(w, http.StatusNotFound, "user is not a member of this project")
		return models.User{}, false
	}
	return u, true
}

// HandleDelete soft-deletes a resident: the record stays, every membership is
// cleared. POST /users/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p := project.FromRequest(r)
	u, ok := h.loadMember(w, r, p)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "soft delete user")
	defer cancel()

	if err := h.Users.SoftDelete(ctx, u.ID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "soft delete failed", err, "Unable to delete user.")
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.UserDeleted(ctx, r, p.ID, actor, u.ID)
	uierrors.WriteJSON(w, http.StatusOK, actionResponse{UserID: u.ID.Hex(), Message: "User deleted."})
}

// HandleRemove removes every membership of the active project from a
// resident. POST /users/{id}/remove
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	p := project.FromRequest(r)
	u, ok := h.loadMember(w, r, p)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "remove user from project")
	defer cancel()

	if _, err := h.Users.RemoveFromProject(ctx, u.ID, p.ID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "remove from project failed", err, "Unable to remove user.")
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.UserRemoved(ctx, r, p.ID, actor, u.ID)
	uierrors.WriteJSON(w, http.StatusOK, actionResponse{UserID: u.ID.Hex(), Message: "User removed from " + p.Name + "."})
}
