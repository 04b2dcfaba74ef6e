// Package mqueue implements an at-least-once message queue on top of a
// MongoDB collection: producers enqueue documents, consumers claim them
// atomically under a visibility timeout, extend the lease with Ping and
// complete it with Ack. Messages that exhaust their retry budget are
// escalated to a dead-letter queue.
//
// All correctness under concurrent consumers rests on a single
// findAndModify per operation; the package holds no locks and keeps no
// per-call state, so one Queue may be shared freely across goroutines and
// processes.
package mqueue

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Defaults applied by New when the corresponding option is not given.
const (
	DefaultVisibility    = 60 * time.Second
	DefaultDelay         = 60 * time.Second
	DefaultMaxRetries    = 5
	DefaultGetRetryLimit = 500
)

// Queue is bound to one backing collection. All message state lives in the
// collection documents; the struct itself is immutable after New.
type Queue struct {
	collection    *mongo.Collection
	name          string
	visibility    time.Duration
	delay         time.Duration
	deadQueue     *Queue
	maxRetries    int
	getRetryLimit int
	logger        *zap.Logger
}

// Option configures a Queue at construction time.
type Option func(*Queue)

// WithVisibility sets how long a claimed message stays hidden from other
// consumers before it becomes eligible for re-claim.
func WithVisibility(d time.Duration) Option {
	return func(q *Queue) { q.visibility = d }
}

// WithDelay sets the default delay applied to enqueued messages.
func WithDelay(d time.Duration) Option {
	return func(q *Queue) { q.delay = d }
}

// WithDeadQueue routes messages that exceed the retry budget to dead.
func WithDeadQueue(dead *Queue) Option {
	return func(q *Queue) { q.deadQueue = dead }
}

// WithMaxRetries sets the claim budget checked on the dead-letter path.
// Only meaningful together with WithDeadQueue.
func WithMaxRetries(n int) Option {
	return func(q *Queue) { q.maxRetries = n }
}

// WithGetRetryLimit bounds how many dead-letter escalations a single Get
// call may perform before giving up with ErrMaxRetriesReached.
func WithGetRetryLimit(n int) Option {
	return func(q *Queue) { q.getRetryLimit = n }
}

// WithLogger attaches a logger; New defaults to a no-op one.
func WithLogger(logger *zap.Logger) Option {
	return func(q *Queue) { q.logger = logger }
}

// New binds a Queue to the named collection of db. It fails fast when the
// database handle is missing, the name is empty, or the server does not
// answer a ping. The collection is created implicitly on first insert;
// indexes are not — call CreateIndexes once per deployment.
func New(ctx context.Context, db *mongo.Database, name string, opts ...Option) (*Queue, error) {
	if db == nil {
		return nil, ErrMissingConnection
	}
	if name == "" {
		return nil, ErrEmptyName
	}

	q := &Queue{
		collection:    db.Collection(name),
		name:          name,
		visibility:    DefaultVisibility,
		delay:         DefaultDelay,
		maxRetries:    DefaultMaxRetries,
		getRetryLimit: DefaultGetRetryLimit,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = q.logger.Named("mqueue").With(zap.String("queue", name))

	if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
		q.logger.Error("New: ping failed", zap.Error(err))
		return nil, err
	}

	return q, nil
}

// Name returns the queue (and collection) name.
func (q *Queue) Name() string {
	return q.name
}
