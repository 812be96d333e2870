// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	uierrors.UseLogger(logger)

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Batch:  appCfg.TimeoutBatch,
	})

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return err
	}

	// The watcher outlives the startup context; Shutdown stops it.
	deps.DeviceResets.Start(context.Background())
	return nil
}
