// internal/app/features/dashboard/handler.go
package dashboard

import (
	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	workqueuestore "github.com/dalemusser/compoundhub/internal/app/store/workqueues"
	"github.com/dalemusser/compoundhub/internal/app/system/badges"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PendingCounter reports a live per-project count; ok is false while it has
// nothing to report yet.
type PendingCounter interface {
	PendingFor(projectID primitive.ObjectID) (n int, ok bool)
}

// Handler serves the console's badge counters.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Queues   *workqueuestore.Store
	Registry *badges.Registry

	// DeviceResets, when set and ready, replaces the device_reset_requests
	// fetch. Optional.
	DeviceResets PendingCounter
}

func NewHandler(db *mongo.Database, fetchCap int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		Queues:   workqueuestore.New(db, fetchCap),
		Registry: badges.Default(),
	}
}
