// Package queue provides the in-memory message container shared by SEDA
// producers and consumers, and the publisher abstraction producers expose.
//
// BlockingQueue is a FIFO that may be bounded or unbounded. Put blocks while
// the queue is full and Take blocks while it is empty; both return early when
// their context is canceled or the queue is closed. A queue carries its own
// lock, so callers holding a queue never contend with the registry that
// handed it out.
//
// All QueuePublisher implementations require Close to be called once the
// publisher is no longer needed.
package queue
