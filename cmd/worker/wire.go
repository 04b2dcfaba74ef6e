//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/aceleracloud/mongo-queue/cmd/worker/handlers"
	"github.com/aceleracloud/mongo-queue/internal/conf"
	"github.com/aceleracloud/mongo-queue/internal/dao/mongodb"
	"github.com/aceleracloud/mongo-queue/internal/logger"
	"github.com/aceleracloud/mongo-queue/internal/metrics"
	"github.com/aceleracloud/mongo-queue/internal/provider"
	"github.com/aceleracloud/mongo-queue/internal/worker"
	"github.com/aceleracloud/mongo-queue/pkg/mqueue"
)

// provideDispatcherHandler adapts the registered handler to the dispatcher's
// handler function.
func provideDispatcherHandler(h handlers.MessageHandler) worker.HandlerFunc {
	return h.Handle
}

// InitializeWorkerApp creates the worker application and its dependencies.
func InitializeWorkerApp(appConfig *conf.AppConfig) (*WorkerApp, func(), error) {
	wire.Build(
		// Config Providers
		wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig", "QueueConfig", "WorkerConfig", "MetricsConfig"),

		// Common Components
		logger.NewLogger,
		mongodb.NewMongoDB,
		provider.ProvideDatabase,
		provider.ProvideQueue,
		provider.ProvideMetricsAddr,
		wire.Bind(new(worker.MessageSource), new(*mqueue.Queue)),
		wire.Bind(new(worker.Cleaner), new(*mqueue.Queue)),
		wire.Bind(new(metrics.QueueStats), new(*mqueue.Queue)),

		// Handlers & Workers
		handlers.NewWebhookHandler,
		wire.Bind(new(handlers.MessageHandler), new(*handlers.WebhookHandler)),
		provideDispatcherHandler,
		worker.NewDispatcher,
		worker.NewJanitor,

		// Final App
		NewWorkerApp,
	)
	return nil, nil, nil
}
