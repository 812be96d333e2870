// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; ports, TLS, log level and
// CORS live in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: compoundhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Lists
	DirectoryCap   int // bounded user/unit fetch per project
	BrowsePageSize int
	SearchLimit    int
	SearchMinChars int

	// Bulk actions and notifications
	BulkConcurrency       int
	BulkRateLimit         int    // bulk actions per staff member per minute
	NotifyTransport       string // "inbox" or "amqp"
	AMQPURL               string
	AMQPQueue             string
	NotifyBreakerFailures int

	// Device-reset watcher fallback poll interval
	DeviceResetPoll time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAdmin string

	// Operation timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration
}
