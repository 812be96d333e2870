// internal/app/features/residents/handler.go
package residents

import (
	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	userstore "github.com/dalemusser/compoundhub/internal/app/store/users"
	"github.com/dalemusser/compoundhub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for the resident directory of the
// active project.
type Handler struct {
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
	Users     *userstore.Store
	Directory int // cap on users loaded per request
}

func NewHandler(db *mongo.Database, directoryCap int, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if directoryCap <= 0 {
		directoryCap = userstore.DefaultDirectoryCap
	}
	return &Handler{
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
		Users:     userstore.New(db),
		Directory: directoryCap,
	}
}
