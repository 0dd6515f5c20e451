package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Msg represents a queue message.
//
// Channel identifies the logical channel the message was published to.
// Key is an optional correlation key.
// Value contains the message payload.
// Headers contains additional metadata.
type Msg struct {
	ID        string
	Channel   string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	CreatedAt time.Time
}

// NewMsg returns a message for channel with a fresh ID and creation time.
func NewMsg(channel string, value []byte) Msg {
	return Msg{
		ID:        uuid.NewString(),
		Channel:   channel,
		Value:     value,
		CreatedAt: time.Now(),
	}
}

// withDefaults fills in the ID and creation time when the caller left them empty.
func (m Msg) withDefaults() Msg {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return m
}

type QueuePublisher interface {
	// Publish publishes a message to the underlying queue.
	//
	// Implementations may block until the message is accepted, for example
	// while a bounded queue is full.
	Publish(ctx context.Context, message Msg) error

	// Close stops the publisher and releases all resources.
	//
	// Calling Close more than once has no further effect.
	Close(ctx context.Context)
}
