package worker

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/aceleracloud/mongo-queue/internal/conf"
	"github.com/aceleracloud/mongo-queue/internal/metrics"
)

// Cleaner is the maintenance slice of the queue surface the janitor needs.
// *mqueue.Queue satisfies it.
type Cleaner interface {
	Name() string
	Clean(ctx context.Context) error
}

// Janitor periodically reclaims acknowledged messages from the backing
// collection. Acked documents are kept until cleaned so Done stays
// meaningful for monitoring.
type Janitor struct {
	cleaner  Cleaner
	logger   *zap.Logger
	interval time.Duration
}

// NewJanitor creates a new Janitor.
func NewJanitor(cleaner Cleaner, logger *zap.Logger, cfg *conf.WorkerConfig) *Janitor {
	return &Janitor{
		cleaner:  cleaner,
		logger:   logger.Named("Janitor").With(zap.String("queue", cleaner.Name())),
		interval: time.Duration(cfg.Janitor.IntervalSeconds) * time.Second,
	}
}

// Start begins the cleanup loop and blocks until the context is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("Janitor started", zap.Duration("interval", j.interval))
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.runOnce(ctx)
		case <-ctx.Done():
			j.logger.Info("Janitor shutting down")
			return
		}
	}
}

func (j *Janitor) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("Panic recovered in janitor",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()

	start := time.Now()
	if err := j.cleaner.Clean(ctx); err != nil {
		metrics.JanitorErrors.Inc()
		j.logger.Error("Failed to clean acknowledged messages", zap.Error(err))
		return
	}
	metrics.JanitorDuration.Observe(time.Since(start).Seconds())
	j.logger.Debug("Cleaned acknowledged messages", zap.Duration("took", time.Since(start)))
}

var _ Worker = (*Janitor)(nil)
