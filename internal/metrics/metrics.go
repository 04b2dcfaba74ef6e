package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Messages claimed by the dispatcher
	MessagesClaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mqueue_messages_claimed_total",
			Help: "Total number of messages claimed from the queue",
		},
		[]string{"queue"},
	)

	// Messages acknowledged after successful handling
	MessagesAcked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mqueue_messages_acked_total",
			Help: "Total number of messages acknowledged",
		},
		[]string{"queue"},
	)

	// Handler failures; the message is left to expire back into the queue
	HandlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mqueue_handler_failures_total",
			Help: "Total number of message handler failures",
		},
		[]string{"queue"},
	)

	// Dispatcher poll errors
	DispatchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mqueue_dispatch_errors_total",
			Help: "Total number of dispatcher poll errors",
		},
	)

	// Janitor run duration
	JanitorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mqueue_janitor_duration_seconds",
			Help:    "Time taken for the janitor to reclaim acknowledged messages",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Janitor errors counter
	JanitorErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mqueue_janitor_errors_total",
			Help: "Total number of janitor errors",
		},
	)
)
