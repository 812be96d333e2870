// internal/app/features/units/handler.go
package units

import (
	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	unitstore "github.com/dalemusser/compoundhub/internal/app/store/units"
	userstore "github.com/dalemusser/compoundhub/internal/app/store/users"
	"github.com/dalemusser/compoundhub/internal/app/system/listing"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the unit list of the active project, annotated with
// occupancy.
type Handler struct {
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Units     *unitstore.Store
	Users     *userstore.Store
	Options   listing.Options
	Directory int
}

func NewHandler(db *mongo.Database, opts listing.Options, directoryCap int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if directoryCap <= 0 {
		directoryCap = userstore.DefaultDirectoryCap
	}
	return &Handler{
		Log:       logger,
		ErrLog:    errLog,
		Units:     unitstore.New(db),
		Users:     userstore.New(db),
		Options:   opts,
		Directory: directoryCap,
	}
}
