// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/auditlog"
	"github.com/dalemusser/compoundhub/internal/app/system/listing"
	"github.com/dalemusser/compoundhub/internal/app/system/notify"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Notification transports.
const (
	TransportInbox = "inbox"
	TransportAMQP  = "amqp"
)

// appConfigKeys defines the configuration keys for CompoundHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COMPOUNDHUB_MONGO_URI, COMPOUNDHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "compound_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "compoundhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Lists
	{Name: "directory_cap", Default: 2000, Desc: "Max users/units loaded per project for in-memory lists"},
	{Name: "browse_page_size", Default: listing.DefaultBrowsePageSize, Desc: "Page size of cursor-append lists"},
	{Name: "search_limit", Default: listing.DefaultSearchLimit, Desc: "Max results of a prefix search"},
	{Name: "search_min_chars", Default: listing.MinSearchChars, Desc: "Minimum search term length before prefix search is used"},

	// Bulk actions and notifications
	{Name: "bulk_concurrency", Default: 8, Desc: "Per-occupant operations in flight during a bulk action"},
	{Name: "bulk_rate_limit", Default: 10, Desc: "Bulk actions allowed per staff member per minute"},
	{Name: "notify_transport", Default: TransportInbox, Desc: "Notification transport: 'inbox' or 'amqp'"},
	{Name: "amqp_url", Default: "", Desc: "AMQP broker URL (required for the amqp transport)"},
	{Name: "amqp_queue", Default: "compoundhub.notifications", Desc: "AMQP queue for notifications"},
	{Name: "notify_breaker_failures", Default: notify.DefaultBreakerFailures, Desc: "Consecutive notification failures before the breaker opens"},

	{Name: "device_reset_poll", Default: "30s", Desc: "Device-reset poll interval when change streams are unavailable"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for full-project loads"},
	{Name: "timeout_batch", Default: "2m", Desc: "Timeout for bulk actions"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, COMPOUNDHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COMPOUNDHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		DirectoryCap:   appValues.Int("directory_cap"),
		BrowsePageSize: appValues.Int("browse_page_size"),
		SearchLimit:    appValues.Int("search_limit"),
		SearchMinChars: appValues.Int("search_min_chars"),

		BulkConcurrency:       appValues.Int("bulk_concurrency"),
		BulkRateLimit:         appValues.Int("bulk_rate_limit"),
		NotifyTransport:       appValues.String("notify_transport"),
		AMQPURL:               appValues.String("amqp_url"),
		AMQPQueue:             appValues.String("amqp_queue"),
		NotifyBreakerFailures: appValues.Int("notify_breaker_failures"),

		DeviceResetPoll: appValues.Duration("device_reset_poll", 30*time.Second),

		AuditLogAdmin: appValues.String("audit_log_admin"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
		TimeoutBatch:  appValues.Duration("timeout_batch", timeouts.DefaultBatch),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(appCfg)
}

// validateApp checks the settings that do not need WAFFLE.
func validateApp(c AppConfig) error {
	switch c.NotifyTransport {
	case TransportInbox:
	case TransportAMQP:
		if c.AMQPURL == "" {
			return errors.New("notify_transport 'amqp' requires amqp_url")
		}
		if c.AMQPQueue == "" {
			return errors.New("notify_transport 'amqp' requires amqp_queue")
		}
	default:
		return fmt.Errorf("unknown notify_transport %q (want 'inbox' or 'amqp')", c.NotifyTransport)
	}

	positive := []struct {
		name string
		v    int
	}{
		{"directory_cap", c.DirectoryCap},
		{"browse_page_size", c.BrowsePageSize},
		{"search_limit", c.SearchLimit},
		{"search_min_chars", c.SearchMinChars},
		{"bulk_concurrency", c.BulkConcurrency},
		{"bulk_rate_limit", c.BulkRateLimit},
		{"notify_breaker_failures", c.NotifyBreakerFailures},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.v)
		}
	}

	switch c.AuditLogAdmin {
	case auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff, "":
	default:
		return fmt.Errorf("unknown audit_log_admin %q", c.AuditLogAdmin)
	}
	return nil
}
