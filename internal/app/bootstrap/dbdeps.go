// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/compoundhub/internal/app/system/notify"
	"github.com/dalemusser/compoundhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Notifier is the breaker-wrapped dispatcher shared by bulk actions and
	// unit-request approvals.
	Notifier *notify.Breaker
	// AMQP is set only for the amqp transport.
	AMQP *notify.AMQPPublisher

	DeviceResets *workers.DeviceResetWatcher
}
