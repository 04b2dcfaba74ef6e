package mqueue

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BSON field names of a queue document.
const (
	fieldID      = "_id"
	fieldVisible = "visible"
	fieldPayload = "payload"
	fieldAck     = "ack"
	fieldTries   = "tries"
	fieldDeleted = "deleted"
)

// messageDoc is the stored shape of a queue entry.
//
// visible and deleted are ISO-8601 stamps (see stampLayout). deleted is
// absent while the message is active and set exactly once on Ack. tries
// counts successful claims and is only ever incremented by Get.
type messageDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Visible string             `bson:"visible"`
	Payload bson.RawValue      `bson:"payload"`
	Ack     string             `bson:"ack,omitempty"`
	Tries   int                `bson:"tries,omitempty"`
	Deleted string             `bson:"deleted,omitempty"`
}

// Message is a claimed queue entry as handed to a consumer. The same shape
// is what gets enqueued onto the dead queue when a message exhausts its
// retry budget.
type Message struct {
	ID      string        `bson:"id" json:"id"`
	Ack     string        `bson:"ack" json:"ack"`
	Payload bson.RawValue `bson:"payload" json:"payload"`
	Tries   int           `bson:"tries" json:"tries"`
}

// DecodePayload unmarshals the opaque payload into out.
func (m *Message) DecodePayload(out interface{}) error {
	return m.Payload.Unmarshal(out)
}

// Enqueued reports one inserted message back to the producer. Ack holds the
// placeholder token written at insert time; it only becomes an active lease
// credential once the message is claimed, at which point it is replaced.
type Enqueued struct {
	ID      string      `json:"id"`
	Ack     string      `json:"ack"`
	Payload interface{} `json:"payload"`
}
