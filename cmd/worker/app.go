package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aceleracloud/mongo-queue/internal/metrics"
	"github.com/aceleracloud/mongo-queue/internal/provider"
	"github.com/aceleracloud/mongo-queue/internal/worker"
)

// WorkerApp holds the components of the worker application.
type WorkerApp struct {
	dispatcher *worker.Dispatcher
	janitor    *worker.Janitor
	metricsSrv *http.Server
	logger     *zap.Logger
}

// NewWorkerApp creates the worker application: the dispatcher and janitor
// workers plus an HTTP server exposing /metrics and /healthz. The queue
// collector registers the queue's gauges with the default registry.
func NewWorkerApp(dispatcher *worker.Dispatcher, janitor *worker.Janitor, stats metrics.QueueStats, addr provider.MetricsAddr, logger *zap.Logger) *WorkerApp {
	metrics.NewQueueCollector(stats, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &WorkerApp{
		dispatcher: dispatcher,
		janitor:    janitor,
		metricsSrv: &http.Server{Addr: string(addr), Handler: mux},
		logger:     logger,
	}
}

// Run starts all background workers and blocks until the context is
// cancelled or a component fails.
func (a *WorkerApp) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.dispatcher.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		a.janitor.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		a.logger.Info("Metrics server started", zap.String("addr", a.metricsSrv.Addr))
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.metricsSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
