// internal/app/features/unitrequests/handler.go
package unitrequests

import (
	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	unitrequeststore "github.com/dalemusser/compoundhub/internal/app/store/unitrequests"
	"github.com/dalemusser/compoundhub/internal/app/system/auditlog"
	"github.com/dalemusser/compoundhub/internal/app/system/unitapproval"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the unit-request approval queue.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Requests *unitrequeststore.Store
	Machine  *unitapproval.Machine
}

func NewHandler(db *mongo.Database, machine *unitapproval.Machine, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Requests: unitrequeststore.New(db),
		Machine:  machine,
	}
}
