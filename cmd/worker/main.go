package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aceleracloud/mongo-queue/internal/conf"
)

func main() {
	// Command-line flag for config file path
	confPath := flag.String("c", "internal/conf/config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	appConfig, err := conf.NewConfig(*confPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// Initialize app using Wire
	app, cleanup, err := InitializeWorkerApp(appConfig)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize worker app: %v", err))
	}
	defer cleanup()

	// Create a context that is cancelled on interruption signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application
	app.logger.Info("Starting worker application")
	if err := app.Run(ctx); err != nil {
		app.logger.Error("Worker application exited with error", zap.Error(err))
	}

	app.logger.Info("Worker application shut down gracefully")
}
