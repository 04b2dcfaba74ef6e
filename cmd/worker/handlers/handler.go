package handlers

import (
	"context"

	"github.com/aceleracloud/mongo-queue/pkg/mqueue"
)

// MessageHandler defines the interface for any queue message handler.
type MessageHandler interface {
	// QueueName returns the name of the queue this handler consumes from.
	QueueName() string
	// Handle processes one claimed message. Returning an error leaves the
	// message unacknowledged for redelivery.
	Handle(ctx context.Context, msg *mqueue.Message) error
}
