package mqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AddOption overrides enqueue behaviour for one Add/AddMany call.
type AddOption func(*addOptions)

type addOptions struct {
	delay time.Duration
}

// WithAddDelay overrides the queue's configured delay for this call.
func WithAddDelay(d time.Duration) AddOption {
	return func(o *addOptions) { o.delay = d }
}

// GetOption overrides claim behaviour for one Get call.
type GetOption func(*getOptions)

type getOptions struct {
	visibility time.Duration
}

// WithGetVisibility overrides the queue's visibility timeout for this claim.
func WithGetVisibility(d time.Duration) GetOption {
	return func(o *getOptions) { o.visibility = d }
}

// PingOption overrides lease extension behaviour for one Ping call.
type PingOption func(*pingOptions)

type pingOptions struct {
	visibility time.Duration
}

// WithPingVisibility overrides the queue's visibility timeout for this
// extension.
func WithPingVisibility(d time.Duration) PingOption {
	return func(o *pingOptions) { o.visibility = d }
}

// Add enqueues a single payload and reports its identity and placeholder
// ack token.
func (q *Queue) Add(ctx context.Context, payload interface{}, opts ...AddOption) (*Enqueued, error) {
	msgs, err := q.AddMany(ctx, []interface{}{payload}, opts...)
	if err != nil {
		return nil, err
	}
	return msgs[0], nil
}

// AddMany enqueues payloads in order, all sharing one visible stamp. The
// insert is all-or-nothing from the caller's perspective: any failure of
// the batch insert fails the whole call.
func (q *Queue) AddMany(ctx context.Context, payloads []interface{}, opts ...AddOption) ([]*Enqueued, error) {
	if len(payloads) == 0 {
		return nil, ErrNoPayloads
	}

	o := addOptions{delay: q.delay}
	for _, opt := range opts {
		opt(&o)
	}

	visible := nowStamp()
	if o.delay > 0 {
		visible = stampAfter(o.delay)
	}

	docs := make([]interface{}, len(payloads))
	tokens := make([]string, len(payloads))
	for i, payload := range payloads {
		tokens[i] = newToken()
		docs[i] = bson.M{
			fieldVisible: visible,
			fieldPayload: payload,
			fieldAck:     tokens[i],
		}
	}

	res, err := q.collection.InsertMany(ctx, docs)
	if err != nil {
		q.logger.Error("AddMany: InsertMany failed", zap.Error(err), zap.Int("count", len(payloads)))
		return nil, fmt.Errorf("add messages: %w", err)
	}

	msgs := make([]*Enqueued, len(payloads))
	for i, id := range res.InsertedIDs {
		msgs[i] = &Enqueued{
			ID:      id.(primitive.ObjectID).Hex(),
			Ack:     tokens[i],
			Payload: payloads[i],
		}
	}
	return msgs, nil
}

// Get claims the oldest visible message: one findAndModify increments its
// try counter, assigns a fresh ack token and pushes its visible stamp past
// the visibility timeout. A nil message with a nil error means the queue
// holds nothing eligible right now.
//
// When a dead queue is configured and the claimed message has exceeded the
// retry budget, Get forwards it to the dead queue, acknowledges it here and
// claims the next eligible message instead, so callers never see a
// retry-exhausted message. The number of such escalations per call is
// bounded by the get retry limit; the forward and the acknowledge are two
// separate writes, so a crash between them can duplicate the message into
// the dead queue (at-least-once, by contract).
func (q *Queue) Get(ctx context.Context, opts ...GetOption) (*Message, error) {
	o := getOptions{visibility: q.visibility}
	for _, opt := range opts {
		opt(&o)
	}

	for attempt := 0; ; attempt++ {
		if attempt > q.getRetryLimit {
			return nil, ErrMaxRetriesReached
		}

		filter := bson.M{
			fieldDeleted: nil,
			fieldVisible: bson.M{"$lte": nowStamp()},
		}
		update := bson.M{
			"$inc": bson.M{fieldTries: 1},
			"$set": bson.M{
				fieldAck:     newToken(),
				fieldVisible: stampAfter(o.visibility),
			},
		}
		findOpts := options.FindOneAndUpdate().
			SetSort(bson.D{{Key: fieldID, Value: 1}}).
			SetReturnDocument(options.After)

		var doc messageDoc
		err := q.collection.FindOneAndUpdate(ctx, filter, update, findOpts).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			q.logger.Error("Get: FindOneAndUpdate failed", zap.Error(err))
			return nil, fmt.Errorf("get message: %w", err)
		}

		msg := &Message{
			ID:      doc.ID.Hex(),
			Ack:     doc.Ack,
			Payload: doc.Payload,
			Tries:   doc.Tries,
		}

		if q.deadQueue == nil || msg.Tries <= q.maxRetries {
			return msg, nil
		}

		// Retry budget exhausted: move the message to the dead queue and
		// loop for the next eligible one.
		q.logger.Info("Get: forwarding message to dead queue",
			zap.String("id", msg.ID), zap.Int("tries", msg.Tries))
		if _, err := q.deadQueue.Add(ctx, msg); err != nil {
			return nil, fmt.Errorf("forward to dead queue: %w", err)
		}
		if _, err := q.Ack(ctx, msg.Ack); err != nil {
			return nil, fmt.Errorf("remove dead message: %w", err)
		}
	}
}

// Ack marks the leased message holding the given token as permanently done
// and returns its identity. A token that no longer matches an active
// message yields ErrUnidentifiedAck.
func (q *Queue) Ack(ctx context.Context, ackToken string) (string, error) {
	filter := bson.M{
		fieldAck:     ackToken,
		fieldDeleted: nil,
	}
	update := bson.M{
		"$set": bson.M{fieldDeleted: nowStamp()},
	}
	findOpts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc messageDoc
	err := q.collection.FindOneAndUpdate(ctx, filter, update, findOpts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("%w: %s", ErrUnidentifiedAck, ackToken)
	}
	if err != nil {
		q.logger.Error("Ack: FindOneAndUpdate failed", zap.Error(err))
		return "", fmt.Errorf("ack message: %w", err)
	}
	return doc.ID.Hex(), nil
}

// Ping extends the lease held by the given token without completing it and
// returns the message identity. Tries are untouched. A token that no
// longer matches an active message yields ErrUnidentifiedAck.
func (q *Queue) Ping(ctx context.Context, ackToken string, opts ...PingOption) (string, error) {
	o := pingOptions{visibility: q.visibility}
	for _, opt := range opts {
		opt(&o)
	}

	filter := bson.M{
		fieldAck:     ackToken,
		fieldDeleted: nil,
	}
	update := bson.M{
		"$set": bson.M{fieldVisible: stampAfter(o.visibility)},
	}
	findOpts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc messageDoc
	err := q.collection.FindOneAndUpdate(ctx, filter, update, findOpts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("%w: %s", ErrUnidentifiedAck, ackToken)
	}
	if err != nil {
		q.logger.Error("Ping: FindOneAndUpdate failed", zap.Error(err))
		return "", fmt.Errorf("ping message: %w", err)
	}
	return doc.ID.Hex(), nil
}
