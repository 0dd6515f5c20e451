package seda

import (
	"errors"
	"slices"
	"sync"

	"github.com/ava-labs/seda-registry/pkg/metrics"
	"go.uber.org/zap"
)

// Registry maps channel keys to reference-counted shared queues.
type Registry struct {
	log     *zap.SugaredLogger
	cfg     Config
	metrics *metrics.Metrics

	mu     sync.RWMutex
	queues map[string]*QueueReference
	refs   int // sum of all counts, guarded by mu
}

// Option configures optional Registry collaborators.
type Option func(*Registry)

// WithMetrics records registry and endpoint activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.SugaredLogger, cfg Config, opts ...Option) (*Registry, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	r := &Registry{
		log:    log,
		cfg:    cfg.WithDefaults(),
		queues: make(map[string]*QueueReference),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the registry-wide configuration.
func (r *Registry) Config() Config {
	return r.cfg
}

// AcquireOption declares properties of the channel being acquired.
type AcquireOption func(*acquireRequest)

type acquireRequest struct {
	size              *int
	multipleConsumers *bool
}

// WithSize declares the channel capacity. Values <= 0 declare nothing.
func WithSize(n int) AcquireOption {
	return func(req *acquireRequest) {
		if n > 0 {
			req.size = &n
		} else {
			req.size = nil
		}
	}
}

// WithMultipleConsumers declares whether the channel expects competing consumers.
func WithMultipleConsumers(b bool) AcquireOption {
	return func(req *acquireRequest) {
		req.multipleConsumers = &b
	}
}

// Acquire returns the queue for the channel addressed by uri and records one
// more reference to it.
//
// If the channel exists and a size was declared that differs from the size
// the channel was created with (an unbounded channel differs from every
// size), Acquire returns a *CapacityMismatchError and changes nothing.
// Without a declared size the existing queue is always reused.
//
// A new channel takes the declared size, else the registry's QueueSize if
// positive, else it is unbounded.
func (r *Registry) Acquire(uri string, opts ...AcquireOption) (*QueueReference, error) {
	var req acquireRequest
	for _, opt := range opts {
		opt(&req)
	}
	key := Key(uri)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ref, ok := r.queues[key]; ok {
		if req.size != nil && (ref.size == nil || *ref.size != *req.size) {
			r.metrics.RecordAcquire(metrics.AcquireCapacityMismatch, len(r.queues), r.refs)
			return nil, &CapacityMismatchError{
				Key:       key,
				Existing:  ref.size,
				Requested: *req.size,
			}
		}

		ref.count.Add(1)
		r.refs++
		r.metrics.RecordAcquire(metrics.AcquireReused, len(r.queues), r.refs)
		r.log.Debugw("reusing existing queue",
			"key", key,
			"size", ref.size,
			"references", ref.Count(),
		)
		return ref, nil
	}

	size := req.size
	if size == nil && r.cfg.QueueSize > 0 {
		defaultSize := r.cfg.QueueSize
		size = &defaultSize
	}

	ref := newQueueReference(key, size, req.multipleConsumers)
	ref.count.Store(1)
	r.queues[key] = ref
	r.refs++
	r.metrics.RecordAcquire(metrics.AcquireCreated, len(r.queues), r.refs)
	r.log.Debugw("created queue",
		"key", key,
		"size", size,
		"multipleConsumers", req.multipleConsumers,
	)
	return ref, nil
}

// Release gives back one reference to the channel addressed by uri. When the
// last reference is released the queue is removed and closed; messages still
// in it are discarded. Releasing an unknown channel does nothing.
func (r *Registry) Release(uri string) {
	key := Key(uri)

	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.queues[key]
	if !ok {
		r.metrics.RecordRelease(metrics.ReleaseUnknown, len(r.queues), r.refs)
		r.log.Debugw("release of unknown queue ignored", "key", key)
		return
	}

	remaining := ref.count.Add(-1)
	r.refs--
	if remaining > 0 {
		r.metrics.RecordRelease(metrics.ReleaseDecremented, len(r.queues), r.refs)
		r.log.Debugw("released queue reference", "key", key, "references", remaining)
		return
	}

	if remaining < 0 {
		// A mapped reference always has a count >= 1, so this is a caller
		// releasing a reference it never acquired.
		r.log.Errorw("queue reference count dropped below zero",
			"key", key,
			"references", remaining,
		)
		r.metrics.IncContractViolation()
		r.refs -= int(remaining)
		ref.count.Store(0)
	}

	delete(r.queues, key)
	dropped := ref.queue.Len()
	ref.queue.Close()
	r.metrics.RecordRelease(metrics.ReleaseRemoved, len(r.queues), r.refs)
	r.log.Debugw("removed queue", "key", key, "droppedMessages", dropped)
}

// Lookup returns the reference registered for key without changing its count.
func (r *Registry) Lookup(key string) (*QueueReference, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.queues[Key(key)]
	return ref, ok
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queues)
}

// Keys returns the registered channel keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedKeysLocked()
}

func (r *Registry) sortedKeysLocked() []string {
	keys := make([]string, 0, len(r.queues))
	for k := range r.queues {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clear drops every channel, closing the queues and discarding their
// messages regardless of outstanding references. Callers must stop producers
// and consumers first; anything still blocked on a dropped queue returns
// queue.ErrClosed.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels := len(r.queues)
	dropped := 0
	for _, ref := range r.queues {
		ref.queue.Close()
		dropped += len(ref.queue.Drain())
		ref.count.Store(0)
	}
	r.queues = make(map[string]*QueueReference)
	r.refs = 0

	r.metrics.RecordClear(dropped)
	r.log.Infow("cleared queue registry", "channels", channels, "droppedMessages", dropped)
}

// Close shuts the registry down by clearing it.
func (r *Registry) Close() {
	r.log.Info("closing queue registry")
	r.Clear()
}
