package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// QueueStats is the read-only slice of the queue surface the collector
// polls. *mqueue.Queue satisfies it.
type QueueStats interface {
	Name() string
	Total(ctx context.Context) (int64, error)
	Size(ctx context.Context) (int64, error)
	InFlight(ctx context.Context) (int64, error)
	Done(ctx context.Context) (int64, error)
}

// QueueCollector exposes the queue's advisory counters as gauges, polled
// at scrape time.
type QueueCollector struct {
	stats  QueueStats
	logger *zap.Logger

	total    *prometheus.Desc
	size     *prometheus.Desc
	inFlight *prometheus.Desc
	done     *prometheus.Desc
}

// NewQueueCollector creates a collector for one queue and registers it with
// the default registry.
func NewQueueCollector(stats QueueStats, logger *zap.Logger) *QueueCollector {
	labels := prometheus.Labels{"queue": stats.Name()}
	c := &QueueCollector{
		stats:  stats,
		logger: logger.Named("QueueCollector"),
		total: prometheus.NewDesc("mqueue_messages_total",
			"Total number of documents in the queue collection", nil, labels),
		size: prometheus.NewDesc("mqueue_messages_waiting",
			"Number of messages currently eligible for claim", nil, labels),
		inFlight: prometheus.NewDesc("mqueue_messages_in_flight",
			"Number of messages under an unexpired lease", nil, labels),
		done: prometheus.NewDesc("mqueue_messages_done",
			"Number of acknowledged messages awaiting cleanup", nil, labels),
	}
	prometheus.MustRegister(c)
	return c
}

// Describe implements prometheus.Collector.
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.size
	ch <- c.inFlight
	ch <- c.done
}

// Collect implements prometheus.Collector.
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectOne(ctx, ch, c.total, c.stats.Total)
	c.collectOne(ctx, ch, c.size, c.stats.Size)
	c.collectOne(ctx, ch, c.inFlight, c.stats.InFlight)
	c.collectOne(ctx, ch, c.done, c.stats.Done)
}

func (c *QueueCollector) collectOne(ctx context.Context, ch chan<- prometheus.Metric, desc *prometheus.Desc, read func(context.Context) (int64, error)) {
	n, err := read(ctx)
	if err != nil {
		c.logger.Error("Collect: queue count failed", zap.Error(err))
		return
	}
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(n))
}
