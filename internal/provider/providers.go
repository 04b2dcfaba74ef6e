package provider

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/aceleracloud/mongo-queue/internal/conf"
	"github.com/aceleracloud/mongo-queue/pkg/mqueue"
)

// --- Type-safe configuration values for dependency injection ---

type AppName string
type AppMode string

// MetricsAddr is the listen address of the metrics HTTP server.
type MetricsAddr string

func ProvideAppName(c *conf.AppConfig) AppName {
	return AppName(c.Name)
}

func ProvideAppMode(c *conf.AppConfig) AppMode {
	return AppMode(c.Mode)
}

// ProvideMetricsAddr builds the metrics listen address from the config.
func ProvideMetricsAddr(cfg *conf.MetricsConfig) MetricsAddr {
	return MetricsAddr(fmt.Sprintf(":%d", cfg.Port))
}

// --- Providers for application components ---

// ProvideDatabase creates a new database instance from a client and config.
func ProvideDatabase(client *mongo.Client, cfg *conf.MongodbConfig) *mongo.Database {
	return client.Database(cfg.DB)
}

// ProvideQueue constructs the configured queue, including its dead-letter
// queue when one is named. The get retry limit arrives here from the
// config layer, where QUEUE_GET_RETRY_LIMIT may have overridden it.
func ProvideQueue(db *mongo.Database, cfg *conf.QueueConfig, logger *zap.Logger) (*mqueue.Queue, error) {
	ctx := context.Background()

	opts := []mqueue.Option{
		mqueue.WithVisibility(cfg.Visibility()),
		mqueue.WithDelay(cfg.Delay()),
		mqueue.WithGetRetryLimit(cfg.GetRetryLimit),
		mqueue.WithLogger(logger),
	}

	if cfg.DeadQueue != "" {
		dead, err := mqueue.New(ctx, db, cfg.DeadQueue,
			mqueue.WithDelay(0),
			mqueue.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to construct dead queue: %w", err)
		}
		opts = append(opts,
			mqueue.WithDeadQueue(dead),
			mqueue.WithMaxRetries(cfg.MaxRetries),
		)
	}

	q, err := mqueue.New(ctx, db, cfg.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to construct queue: %w", err)
	}
	return q, nil
}
