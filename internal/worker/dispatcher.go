package worker

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/aceleracloud/mongo-queue/internal/conf"
	"github.com/aceleracloud/mongo-queue/internal/metrics"
	"github.com/aceleracloud/mongo-queue/pkg/mqueue"
)

// HandlerFunc processes one claimed message. Returning an error leaves the
// message unacknowledged so it expires back into the queue for redelivery.
type HandlerFunc func(ctx context.Context, msg *mqueue.Message) error

// MessageSource is the consuming slice of the queue surface the dispatcher
// needs. *mqueue.Queue satisfies it.
type MessageSource interface {
	Name() string
	Get(ctx context.Context, opts ...mqueue.GetOption) (*mqueue.Message, error)
	Ack(ctx context.Context, ackToken string) (string, error)
}

// Dispatcher polls the queue and feeds claimed messages to a handler. It
// acknowledges only on handler success; failures and panics rely on the
// visibility timeout and the queue's dead-letter path for retries.
type Dispatcher struct {
	source   MessageSource
	handle   HandlerFunc
	logger   *zap.Logger
	interval time.Duration
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(source MessageSource, handle HandlerFunc, logger *zap.Logger, cfg *conf.WorkerConfig) *Dispatcher {
	return &Dispatcher{
		source:   source,
		handle:   handle,
		logger:   logger.Named("Dispatcher").With(zap.String("queue", source.Name())),
		interval: time.Duration(cfg.Dispatcher.IntervalSeconds) * time.Second,
	}
}

// Start begins the polling loop and blocks until the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Dispatcher started", zap.Duration("interval", d.interval))
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.drain(ctx)
		case <-ctx.Done():
			d.logger.Info("Dispatcher shutting down")
			return
		}
	}
}

// drain claims messages until the queue reports nothing eligible.
func (d *Dispatcher) drain(ctx context.Context) {
	for {
		msg, err := d.source.Get(ctx)
		if err != nil {
			metrics.DispatchErrors.Inc()
			d.logger.Error("Failed to claim message", zap.Error(err))
			return
		}
		if msg == nil {
			return
		}
		metrics.MessagesClaimed.WithLabelValues(d.source.Name()).Inc()
		d.dispatch(ctx, msg)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, msg *mqueue.Message) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Panic recovered in message handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
				zap.String("id", msg.ID),
			)
			metrics.HandlerFailures.WithLabelValues(d.source.Name()).Inc()
		}
	}()

	if err := d.handle(ctx, msg); err != nil {
		// Leave the message unacked; it becomes eligible again once its
		// visibility timeout expires.
		metrics.HandlerFailures.WithLabelValues(d.source.Name()).Inc()
		d.logger.Error("Handler failed to process message",
			zap.Error(err), zap.String("id", msg.ID), zap.Int("tries", msg.Tries))
		return
	}

	if _, err := d.source.Ack(ctx, msg.Ack); err != nil {
		d.logger.Error("Failed to ack message", zap.Error(err), zap.String("id", msg.ID))
		return
	}
	metrics.MessagesAcked.WithLabelValues(d.source.Name()).Inc()
}

var _ Worker = (*Dispatcher)(nil)
