package mqueue

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CreateIndexes ensures the two indexes the lease protocol relies on: a
// (deleted, visible) index backing the claim filter and a unique sparse
// index on ack enforcing at most one in-flight lease per token. Idempotent.
func (q *Queue) CreateIndexes(ctx context.Context) error {
	_, err := q.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: fieldDeleted, Value: 1}, {Key: fieldVisible, Value: 1}},
		},
		{
			Keys:    bson.D{{Key: fieldAck, Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		q.logger.Error("CreateIndexes: CreateMany failed", zap.Error(err))
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Clean physically removes acknowledged messages.
func (q *Queue) Clean(ctx context.Context) error {
	_, err := q.collection.DeleteMany(ctx, bson.M{
		fieldDeleted: bson.M{"$exists": true},
	})
	if err != nil {
		q.logger.Error("Clean: DeleteMany failed", zap.Error(err))
		return fmt.Errorf("clean queue: %w", err)
	}
	return nil
}

// Total counts every document regardless of state.
func (q *Queue) Total(ctx context.Context) (int64, error) {
	return q.count(ctx, "Total", bson.M{})
}

// Size counts messages currently eligible for claim.
func (q *Queue) Size(ctx context.Context) (int64, error) {
	return q.count(ctx, "Size", bson.M{
		fieldDeleted: nil,
		fieldVisible: bson.M{"$lte": nowStamp()},
	})
}

// InFlight counts messages under an unexpired lease.
func (q *Queue) InFlight(ctx context.Context) (int64, error) {
	return q.count(ctx, "InFlight", bson.M{
		fieldAck:     bson.M{"$exists": true},
		fieldVisible: bson.M{"$gt": nowStamp()},
		fieldDeleted: nil,
	})
}

// Done counts acknowledged messages not yet reclaimed by Clean.
func (q *Queue) Done(ctx context.Context) (int64, error) {
	return q.count(ctx, "Done", bson.M{
		fieldDeleted: bson.M{"$exists": true},
	})
}

func (q *Queue) count(ctx context.Context, op string, filter bson.M) (int64, error) {
	n, err := q.collection.CountDocuments(ctx, filter)
	if err != nil {
		q.logger.Error(op+": CountDocuments failed", zap.Error(err))
		return 0, fmt.Errorf("count queue messages: %w", err)
	}
	return n, nil
}
