// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/compoundhub/internal/app/store/audit"
	notificationstore "github.com/dalemusser/compoundhub/internal/app/store/notifications"
	workqueuestore "github.com/dalemusser/compoundhub/internal/app/store/workqueues"
	"github.com/dalemusser/compoundhub/internal/app/system/indexes"
	"github.com/dalemusser/compoundhub/internal/app/system/notify"
	"github.com/dalemusser/compoundhub/internal/app/system/timeouts"
	"github.com/dalemusser/compoundhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and the notification transport.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{MongoClient: client, MongoDatabase: db}

	var transport notify.Dispatcher
	switch appCfg.NotifyTransport {
	case TransportAMQP:
		pub, err := notify.DialAMQP(appCfg.AMQPURL, appCfg.AMQPQueue)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("amqp dial: %w", err)
		}
		deps.AMQP = pub
		transport = pub
		logger.Info("notifications publish to AMQP", zap.String("queue", appCfg.AMQPQueue))
	default:
		transport = notify.NewInbox(notificationstore.New(db))
		logger.Info("notifications write to the inbox collection")
	}
	deps.Notifier = notify.NewBreaker(transport, notify.BreakerSettings{
		Transport: appCfg.NotifyTransport,
		Failures:  uint32(appCfg.NotifyBreakerFailures),
	}, logger)

	deps.DeviceResets = workers.NewDeviceResetWatcher(db,
		workqueuestore.New(db, appCfg.DirectoryCap), logger, appCfg.DeviceResetPoll)

	return deps, nil
}

// EnsureSchema creates the indexes the stores rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	if err := audit.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		logger.Error("ensure audit indexes failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
