// Package seda implements the queue registry behind staged event-driven
// (SEDA) channels: a table mapping a channel key to one shared in-memory
// queue, handed out to producers and consumers by reference counting.
//
// Channel keys
//   - A channel is addressed by a URI such as "seda:orders?size=100". The key
//     is the URI with everything from the first '?' removed, so URIs that
//     differ only in parameters share one queue.
//
// Lifecycle
//   - Acquire returns the channel's QueueReference, creating the queue on
//     first use and incrementing its reference count otherwise.
//   - Release decrements the count and discards the queue, together with any
//     messages still in it, when the count reaches zero.
//   - Clear drops every queue. It is meant for service shutdown only, after
//     producers and consumers have stopped.
//
// Capacity
//   - A queue's capacity is fixed when it is created. Acquiring an existing
//     channel with a different explicit capacity fails with
//     ErrCapacityMismatch and leaves the channel untouched. Acquiring without
//     a capacity always reuses the existing queue.
//
// Endpoints
//   - Endpoint, Producer and Consumer are the setup-side collaborators: an
//     endpoint validates its URI parameters (including the consumer
//     concurrency ceiling, MaxConcurrentConsumers) when created, acquires its
//     queue on Start and releases it on Stop.
//
// All Registry methods are safe for concurrent use. Queue Put and Take never
// take the registry lock.
package seda
