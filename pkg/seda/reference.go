package seda

import (
	"sync/atomic"

	"github.com/ava-labs/seda-registry/pkg/queue"
)

// QueueReference is the registry's record of one channel: its shared queue,
// the capacity and consumer mode it was declared with, and how many
// acquisitions are outstanding.
type QueueReference struct {
	key               string
	queue             *queue.BlockingQueue
	size              *int  // nil if unbounded
	multipleConsumers *bool // nil if never declared

	// count is written only while holding the registry lock; atomic so that
	// readers outside the lock see whole values.
	count atomic.Int64
}

func newQueueReference(key string, size *int, multipleConsumers *bool) *QueueReference {
	capacity := 0
	if size != nil {
		capacity = *size
	}
	return &QueueReference{
		key:               key,
		queue:             queue.NewBlockingQueue(capacity),
		size:              size,
		multipleConsumers: multipleConsumers,
	}
}

// Key returns the channel key.
func (r *QueueReference) Key() string {
	return r.key
}

// Queue returns the shared queue.
func (r *QueueReference) Queue() *queue.BlockingQueue {
	return r.queue
}

// Size returns the declared capacity, or false if the queue is unbounded.
func (r *QueueReference) Size() (int, bool) {
	if r.size == nil {
		return 0, false
	}
	return *r.size, true
}

// MultipleConsumers returns the declared consumer mode, or false as the
// second value if the channel never declared one.
func (r *QueueReference) MultipleConsumers() (bool, bool) {
	if r.multipleConsumers == nil {
		return false, false
	}
	return *r.multipleConsumers, true
}

// Count returns the number of outstanding acquisitions.
func (r *QueueReference) Count() int {
	return int(r.count.Load())
}
