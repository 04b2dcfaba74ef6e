package mqueue

import "errors"

var (
	// ErrMissingConnection is returned by New when no database handle is given.
	ErrMissingConnection = errors.New("missing mongodb connection")
	// ErrEmptyName is returned by New when the queue name is empty.
	ErrEmptyName = errors.New("queue name is required")
	// ErrUnidentifiedAck is returned by Ack and Ping when no active message
	// holds the given ack token. This is the expected failure when a lease
	// has already expired and the message was re-claimed by another consumer.
	ErrUnidentifiedAck = errors.New("unidentified ack")
	// ErrMaxRetriesReached is returned by Get when a contiguous run of
	// retry-exhausted messages forces more dead-letter escalations than the
	// configured limit allows in a single call.
	ErrMaxRetriesReached = errors.New("maximum retries reached")
	// ErrNoPayloads is returned by AddMany when called with nothing to insert.
	ErrNoPayloads = errors.New("no payloads to enqueue")
)
