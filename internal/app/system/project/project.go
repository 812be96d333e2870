// Package project resolves the active project for project-scoped routes.
package project

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// URLParam is the chi route parameter carrying the project id.
const URLParam = "projectID"

// Status values for projects.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

type ctxKey string

const projectKey ctxKey = "project"

// Info holds the active project for the current request.
type Info struct {
	ID     primitive.ObjectID
	Name   string
	Status string
}

// Store defines the lookup the middleware needs. GetByID returns
// mongo.ErrNoDocuments for an unknown id.
type Store interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
}

// Middleware loads {projectID} from the route:
//   - malformed ids return 400
//   - unknown projects return 404
//   - disabled projects return 403
func Middleware(store Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, URLParam))
			if err != nil {
				uierrors.WriteError(w, http.StatusBadRequest, "invalid project id")
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			defer cancel()

			p, err := store.GetByID(ctx, oid)
			if errors.Is(err, mongo.ErrNoDocuments) {
				uierrors.WriteError(w, http.StatusNotFound, "project not found")
				return
			}
			if err != nil {
				logger.Error("project lookup failed", zap.String("project_id", oid.Hex()), zap.Error(err))
				uierrors.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if p.Status == StatusDisabled {
				uierrors.WriteError(w, http.StatusForbidden, "project is disabled")
				return
			}

			info := &Info{ID: p.ID, Name: p.Name, Status: p.Status}
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), info)))
		})
	}
}

// FromRequest returns the active project, or nil.
func FromRequest(r *http.Request) *Info {
	return FromContext(r.Context())
}

// FromContext returns the active project stored in ctx, or nil.
func FromContext(ctx context.Context) *Info {
	p, _ := ctx.Value(projectKey).(*Info)
	return p
}

// IDFromRequest returns the active project id or NilObjectID.
func IDFromRequest(r *http.Request) primitive.ObjectID {
	if p := FromRequest(r); p != nil {
		return p.ID
	}
	return primitive.NilObjectID
}

// WithContext returns a context carrying p. Tests use it to skip the
// middleware.
func WithContext(ctx context.Context, p *Info) context.Context {
	return context.WithValue(ctx, projectKey, p)
}

// FilterCtx adds project_id to a filter when a project is active.
func FilterCtx(ctx context.Context, filter map[string]interface{}) {
	if p := FromContext(ctx); p != nil {
		filter["project_id"] = p.ID
	}
}
