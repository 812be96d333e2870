// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	bulkfeature "github.com/dalemusser/compoundhub/internal/app/features/bulk"
	dashboardfeature "github.com/dalemusser/compoundhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/compoundhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/compoundhub/internal/app/features/health"
	residentsfeature "github.com/dalemusser/compoundhub/internal/app/features/residents"
	unitrequestsfeature "github.com/dalemusser/compoundhub/internal/app/features/unitrequests"
	unitsfeature "github.com/dalemusser/compoundhub/internal/app/features/units"
	"github.com/dalemusser/compoundhub/internal/app/store/audit"
	projectstore "github.com/dalemusser/compoundhub/internal/app/store/projects"
	unitrequeststore "github.com/dalemusser/compoundhub/internal/app/store/unitrequests"
	userstore "github.com/dalemusser/compoundhub/internal/app/store/users"
	"github.com/dalemusser/compoundhub/internal/app/system/auditlog"
	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/dalemusser/compoundhub/internal/app/system/bulkaction"
	"github.com/dalemusser/compoundhub/internal/app/system/listing"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"github.com/dalemusser/compoundhub/internal/app/system/ratelimit"
	"github.com/dalemusser/compoundhub/internal/app/system/telemetry"
	"github.com/dalemusser/compoundhub/internal/app/system/unitapproval"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Everything except /health and /metrics is scoped to one project:
// /projects/{projectID}/... requires a signed-in staff member and an active
// project.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Create error logger and audit logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{Admin: appCfg.AuditLogAdmin})

	users := userstore.New(db)
	executor := bulkaction.NewExecutor(users, users, deps.Notifier, logger,
		bulkaction.Options{Concurrency: appCfg.BulkConcurrency, Limit: appCfg.DirectoryCap})
	machine := unitapproval.New(unitrequeststore.New(db), users, deps.Notifier, logger)

	listOpts := listing.Options{
		PageSize:    appCfg.BrowsePageSize,
		SearchLimit: appCfg.SearchLimit,
		MinChars:    appCfg.SearchMinChars,
	}

	r := chi.NewRouter()
	r.Use(telemetry.Middleware)

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(auth.LoadSessionUser(logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, func() string {
		return deps.Notifier.State().String()
	}, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", telemetry.Handler())

	r.Route("/projects/{projectID}", func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(project.Middleware(projectstore.New(db), logger))

		dashboardHandler := dashboardfeature.NewHandler(db, appCfg.DirectoryCap, errLog, logger)
		if deps.DeviceResets != nil {
			dashboardHandler.DeviceResets = deps.DeviceResets
		}
		pr.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

		residentsHandler := residentsfeature.NewHandler(db, appCfg.DirectoryCap, errLog, auditLogger, logger)
		pr.Mount("/users", residentsfeature.Routes(residentsHandler))

		unitsHandler := unitsfeature.NewHandler(db, listOpts, appCfg.DirectoryCap, errLog, logger)
		pr.Mount("/units", unitsfeature.Routes(unitsHandler))

		bulkHandler := bulkfeature.NewHandler(executor, errLog, auditLogger, logger)
		pr.Mount("/bulk", bulkfeature.Routes(bulkHandler, ratelimit.New(appCfg.BulkRateLimit, time.Minute)))

		unitRequestsHandler := unitrequestsfeature.NewHandler(db, machine, errLog, auditLogger, logger)
		pr.Mount("/unit-requests", unitrequestsfeature.Routes(unitRequestsHandler))
	})

	return r, nil
}
