// internal/app/features/bulk/handler.go
package bulk

import (
	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/system/auditlog"
	"github.com/dalemusser/compoundhub/internal/app/system/bulkaction"
	"go.uber.org/zap"
)

// Handler exposes the bulk action executor to staff.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Exec     *bulkaction.Executor
}

func NewHandler(exec *bulkaction.Executor, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Exec:     exec,
	}
}
