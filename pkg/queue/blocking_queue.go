package queue

import (
	"container/list"
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Put and Take once the queue has been closed.
var ErrClosed = errors.New("queue closed")

// BlockingQueue is a thread-safe FIFO of messages with an optional capacity.
type BlockingQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    *list.List
	capacity int // 0 = unbounded
	closed   bool
}

// NewBlockingQueue creates a queue holding at most capacity messages.
// A capacity <= 0 creates an unbounded queue.
func NewBlockingQueue(capacity int) *BlockingQueue {
	if capacity < 0 {
		capacity = 0
	}
	q := &BlockingQueue{
		items:    list.New(),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Put appends msg to the tail of the queue, waiting while the queue is full.
//
// Put returns ctx.Err() if the context is done before space becomes
// available, and ErrClosed if the queue is closed.
func (q *BlockingQueue) Put(ctx context.Context, msg Msg) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.full() && !q.closed {
		stop := q.wakeOnDone(ctx, q.notFull)
		defer stop()
	}
	for q.full() && !q.closed {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.notFull.Wait()
	}
	if q.closed {
		return ErrClosed
	}

	q.items.PushBack(msg.withDefaults())
	q.notEmpty.Broadcast()
	return nil
}

// Offer appends msg only if there is room, reporting whether it was accepted.
func (q *BlockingQueue) Offer(msg Msg) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.full() {
		return false
	}
	q.items.PushBack(msg.withDefaults())
	q.notEmpty.Broadcast()
	return true
}

// Take removes and returns the message at the head of the queue, waiting
// while the queue is empty.
//
// Messages still queued when the queue is closed can be taken; once the
// queue is closed and empty Take returns ErrClosed.
func (q *BlockingQueue) Take(ctx context.Context) (Msg, error) {
	if err := ctx.Err(); err != nil {
		return Msg{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Len() == 0 && !q.closed {
		stop := q.wakeOnDone(ctx, q.notEmpty)
		defer stop()
	}
	for q.items.Len() == 0 && !q.closed {
		if err := ctx.Err(); err != nil {
			return Msg{}, err
		}
		q.notEmpty.Wait()
	}
	if q.items.Len() == 0 {
		return Msg{}, ErrClosed
	}
	return q.pop(), nil
}

// Poll removes and returns the head of the queue without waiting.
func (q *BlockingQueue) Poll() (Msg, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return Msg{}, false
	}
	return q.pop(), true
}

// Drain removes and returns every queued message.
func (q *BlockingQueue) Drain() []Msg {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Msg, 0, q.items.Len())
	for q.items.Len() > 0 {
		out = append(out, q.pop())
	}
	return out
}

// Len returns the number of queued messages.
func (q *BlockingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Capacity returns the maximum number of messages, or 0 if unbounded.
func (q *BlockingQueue) Capacity() int {
	return q.capacity
}

// RemainingCapacity returns how many more messages fit, or -1 if unbounded.
func (q *BlockingQueue) RemainingCapacity() int {
	if q.capacity == 0 {
		return -1
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity - q.items.Len()
}

// Close marks the queue closed and wakes every blocked Put and Take.
// Calling Close more than once does nothing.
func (q *BlockingQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Closed reports whether Close has been called.
func (q *BlockingQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// full must be called with mu held.
func (q *BlockingQueue) full() bool {
	return q.capacity > 0 && q.items.Len() >= q.capacity
}

// pop must be called with mu held and a non-empty list.
func (q *BlockingQueue) pop() Msg {
	msg := q.items.Remove(q.items.Front()).(Msg)
	q.notFull.Broadcast()
	return msg
}

// wakeOnDone broadcasts on cond when ctx is done so waiters can observe the
// cancellation. Taking mu before broadcasting guarantees the waiter is
// already parked in Wait.
func (q *BlockingQueue) wakeOnDone(ctx context.Context, cond *sync.Cond) func() bool {
	return context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		cond.Broadcast()
	})
}
