//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/aceleracloud/mongo-queue/internal/conf"
	"github.com/aceleracloud/mongo-queue/internal/dao/mongodb"
	"github.com/aceleracloud/mongo-queue/internal/logger"
	"github.com/aceleracloud/mongo-queue/internal/provider"
)

// InitializeCLI creates the CLI components and their dependencies.
func InitializeCLI(appConfig *conf.AppConfig) (*CLI, func(), error) {
	wire.Build(
		wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig", "QueueConfig"),
		logger.NewLogger,
		mongodb.NewMongoDB,
		provider.ProvideDatabase,
		provider.ProvideQueue,
		NewCLI,
	)
	return nil, nil, nil
}
