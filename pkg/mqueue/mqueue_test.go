package mqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

func newMockQueue(mt *mtest.T) *Queue {
	return &Queue{
		collection:    mt.Coll,
		name:          "jobs",
		visibility:    time.Minute,
		delay:         0,
		maxRetries:    DefaultMaxRetries,
		getRetryLimit: DefaultGetRetryLimit,
		logger:        zap.NewNop(),
	}
}

func claimedDoc(id primitive.ObjectID, ack string, tries int, payload interface{}) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "visible", Value: stampAfter(time.Minute)},
		{Key: "payload", Value: payload},
		{Key: "ack", Value: ack},
		{Key: "tries", Value: tries},
	}
}

func TestNew_Validation(t *testing.T) {
	t.Run("nil database", func(t *testing.T) {
		_, err := New(context.Background(), nil, "jobs")
		require.ErrorIs(t, err, ErrMissingConnection)
	})

	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	mt.Run("empty name", func(mt *mtest.T) {
		_, err := New(context.Background(), mt.Coll.Database(), "")
		require.ErrorIs(mt, err, ErrEmptyName)
	})
}

func TestQueue_AddMany(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no payloads is rejected without touching the store", func(mt *mtest.T) {
		q := newMockQueue(mt)
		_, err := q.AddMany(context.Background(), nil)
		require.ErrorIs(mt, err, ErrNoPayloads)
	})

	mt.Run("returns one enqueued message per payload in order", func(mt *mtest.T) {
		q := newMockQueue(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(2)}))

		payloads := []interface{}{
			bson.M{"body": "first"},
			bson.M{"body": "second"},
		}
		msgs, err := q.AddMany(context.Background(), payloads)
		require.NoError(mt, err)
		require.Len(mt, msgs, 2)
		require.NotEmpty(mt, msgs[0].ID)
		require.NotEmpty(mt, msgs[1].ID)
		require.NotEqual(mt, msgs[0].Ack, msgs[1].Ack)
		require.Equal(mt, payloads[0], msgs[0].Payload)
		require.Equal(mt, payloads[1], msgs[1].Payload)
	})

	mt.Run("batch insert failure fails the whole call", func(mt *mtest.T) {
		q := newMockQueue(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "duplicate key",
			Name:    "DuplicateKey",
		}))

		_, err := q.AddMany(context.Background(), []interface{}{bson.M{"body": "x"}})
		require.Error(mt, err)
	})
}

func TestQueue_Get(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("claims and translates the oldest visible message", func(mt *mtest.T) {
		q := newMockQueue(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: claimedDoc(id, "token-1", 1, bson.D{{Key: "body", Value: "hello"}})},
		))

		msg, err := q.Get(context.Background())
		require.NoError(mt, err)
		require.NotNil(mt, msg)
		require.Equal(mt, id.Hex(), msg.ID)
		require.Equal(mt, "token-1", msg.Ack)
		require.Equal(mt, 1, msg.Tries)

		var payload struct {
			Body string `bson:"body"`
		}
		require.NoError(mt, msg.DecodePayload(&payload))
		require.Equal(mt, "hello", payload.Body)
	})

	mt.Run("empty queue is not an error", func(mt *mtest.T) {
		q := newMockQueue(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		msg, err := q.Get(context.Background())
		require.NoError(mt, err)
		require.Nil(mt, msg)
	})

	mt.Run("store failure is wrapped and surfaced", func(mt *mtest.T) {
		q := newMockQueue(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "failure",
			Name:    "CommandFailed",
		}))

		msg, err := q.Get(context.Background())
		require.Error(mt, err)
		require.Nil(mt, msg)
		require.NotErrorIs(mt, err, ErrUnidentifiedAck)
		require.NotErrorIs(mt, err, ErrMaxRetriesReached)
	})

	mt.Run("retry limit below zero fails before touching the store", func(mt *mtest.T) {
		q := newMockQueue(mt)
		q.getRetryLimit = -1

		msg, err := q.Get(context.Background())
		require.ErrorIs(mt, err, ErrMaxRetriesReached)
		require.Nil(mt, msg)
	})

	mt.Run("retry-exhausted message is escalated and the next one returned", func(mt *mtest.T) {
		dead := newMockQueue(mt)
		dead.name = "jobs-dead"

		q := newMockQueue(mt)
		q.deadQueue = dead
		q.maxRetries = 5

		poisonID := primitive.NewObjectID()
		nextID := primitive.NewObjectID()
		mt.AddMockResponses(
			// claim returns a message past its retry budget
			mtest.CreateSuccessResponse(
				bson.E{Key: "value", Value: claimedDoc(poisonID, "poison-token", 6, bson.D{{Key: "body", Value: "poison"}})},
			),
			// dead queue insert
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
			// ack of the poison message on the source queue
			mtest.CreateSuccessResponse(
				bson.E{Key: "value", Value: claimedDoc(poisonID, "poison-token", 6, bson.D{{Key: "body", Value: "poison"}})},
			),
			// second claim returns the next eligible message
			mtest.CreateSuccessResponse(
				bson.E{Key: "value", Value: claimedDoc(nextID, "next-token", 1, bson.D{{Key: "body", Value: "next"}})},
			),
		)

		msg, err := q.Get(context.Background())
		require.NoError(mt, err)
		require.NotNil(mt, msg)
		require.Equal(mt, nextID.Hex(), msg.ID)
		require.Equal(mt, 1, msg.Tries)
	})

	mt.Run("a run of dead messages longer than the limit fails the call", func(mt *mtest.T) {
		dead := newMockQueue(mt)
		dead.name = "jobs-dead"

		q := newMockQueue(mt)
		q.deadQueue = dead
		q.maxRetries = 0
		q.getRetryLimit = 0

		poisonID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "value", Value: claimedDoc(poisonID, "poison-token", 1, bson.D{{Key: "body", Value: "poison"}})},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
			mtest.CreateSuccessResponse(
				bson.E{Key: "value", Value: claimedDoc(poisonID, "poison-token", 1, bson.D{{Key: "body", Value: "poison"}})},
			),
		)

		msg, err := q.Get(context.Background())
		require.ErrorIs(mt, err, ErrMaxRetriesReached)
		require.Nil(mt, msg)
	})
}

func TestQueue_Ack(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns the identity of the acknowledged message", func(mt *mtest.T) {
		q := newMockQueue(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: claimedDoc(id, "token-1", 1, bson.D{{Key: "body", Value: "hello"}})},
		))

		got, err := q.Ack(context.Background(), "token-1")
		require.NoError(mt, err)
		require.Equal(mt, id.Hex(), got)
	})

	mt.Run("unknown token yields unidentified ack", func(mt *mtest.T) {
		q := newMockQueue(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := q.Ack(context.Background(), "stale-token")
		require.ErrorIs(mt, err, ErrUnidentifiedAck)
	})

	mt.Run("store failure is not reported as unidentified ack", func(mt *mtest.T) {
		q := newMockQueue(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "failure",
			Name:    "CommandFailed",
		}))

		_, err := q.Ack(context.Background(), "token-1")
		require.Error(mt, err)
		require.NotErrorIs(mt, err, ErrUnidentifiedAck)
	})
}

func TestQueue_Ping(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns the identity of the extended lease", func(mt *mtest.T) {
		q := newMockQueue(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: claimedDoc(id, "token-1", 3, bson.D{{Key: "body", Value: "hello"}})},
		))

		got, err := q.Ping(context.Background(), "token-1", WithPingVisibility(5*time.Minute))
		require.NoError(mt, err)
		require.Equal(mt, id.Hex(), got)
	})

	mt.Run("unknown token yields unidentified ack", func(mt *mtest.T) {
		q := newMockQueue(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := q.Ping(context.Background(), "stale-token")
		require.ErrorIs(mt, err, ErrUnidentifiedAck)
	})
}

func TestStampOrdering(t *testing.T) {
	earlier := nowStamp()
	later := stampAfter(time.Second)
	require.Less(t, earlier, later)
	require.Len(t, earlier, len("2006-01-02T15:04:05.000Z"))
}
