package seda

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/ava-labs/seda-registry/pkg/metrics"
	"github.com/ava-labs/seda-registry/pkg/queue"
	"go.uber.org/zap"
)

// Endpoint URI parameters.
const (
	ParamSize                     = "size"
	ParamConcurrentConsumers      = "concurrentConsumers"
	ParamLimitConcurrentConsumers = "limitConcurrentConsumers"
	ParamMultipleConsumers        = "multipleConsumers"
)

// EndpointConfig is the validated form of an endpoint URI.
type EndpointConfig struct {
	URI                      string
	Key                      string
	Size                     *int  // nil if not declared
	ConcurrentConsumers      int   // consumer workers, >= 1
	LimitConcurrentConsumers bool  // enforce MaxConcurrentConsumers
	MultipleConsumers        *bool // nil if not declared
}

// ParseEndpointURI reads the endpoint parameters of uri, filling in the
// consumer concurrency from defaults, and runs the concurrency admission
// check. Unknown parameters are rejected.
func ParseEndpointURI(uri string, defaults Config) (EndpointConfig, error) {
	defaults = defaults.WithDefaults()
	cfg := EndpointConfig{
		URI:                      uri,
		Key:                      Key(uri),
		ConcurrentConsumers:      defaults.ConcurrentConsumers,
		LimitConcurrentConsumers: true,
	}
	if cfg.Key == "" {
		return EndpointConfig{}, fmt.Errorf("%w: empty channel key in %q", ErrInvalidParameter, uri)
	}

	var rawQuery string
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		rawQuery = uri[i+1:]
	}
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return EndpointConfig{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}

	for name, values := range params {
		value := values[len(values)-1]
		switch name {
		case ParamSize:
			n, err := parseInt(name, value)
			if err != nil {
				return EndpointConfig{}, err
			}
			if n > 0 {
				cfg.Size = &n
			}
		case ParamConcurrentConsumers:
			n, err := parseInt(name, value)
			if err != nil {
				return EndpointConfig{}, err
			}
			cfg.ConcurrentConsumers = n
		case ParamLimitConcurrentConsumers:
			b, err := parseBool(name, value)
			if err != nil {
				return EndpointConfig{}, err
			}
			cfg.LimitConcurrentConsumers = b
		case ParamMultipleConsumers:
			b, err := parseBool(name, value)
			if err != nil {
				return EndpointConfig{}, err
			}
			cfg.MultipleConsumers = &b
		default:
			return EndpointConfig{}, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
		}
	}

	if err := ValidateConcurrentConsumers(cfg.ConcurrentConsumers, cfg.LimitConcurrentConsumers); err != nil {
		return EndpointConfig{}, err
	}
	return cfg, nil
}

func parseInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidParameter, name, value)
	}
	return n, nil
}

func parseBool(name, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidParameter, name, value)
	}
	return b, nil
}

// Endpoint is one producer or consumer attachment to a channel. Creating an
// endpoint only validates its parameters; the queue is acquired on Start and
// released on Stop.
type Endpoint struct {
	registry *Registry
	log      *zap.SugaredLogger
	cfg      EndpointConfig

	mu  sync.Mutex
	ref *QueueReference
}

// NewEndpoint validates uri and returns an endpoint bound to the registry.
// No registry state is touched.
func (r *Registry) NewEndpoint(uri string) (*Endpoint, error) {
	cfg, err := ParseEndpointURI(uri, r.cfg)
	if err != nil {
		reason := metrics.RejectInvalidURI
		if errors.Is(err, ErrConcurrencyLimitExceeded) {
			reason = metrics.RejectConcurrencyLimit
		}
		r.metrics.IncAdmissionRejection(reason)
		return nil, fmt.Errorf("failed to create endpoint %s: %w", uri, err)
	}
	return &Endpoint{
		registry: r,
		log:      r.log.With("channel", cfg.Key),
		cfg:      cfg,
	}, nil
}

// Config returns the endpoint's validated parameters.
func (e *Endpoint) Config() EndpointConfig {
	return e.cfg
}

// Start acquires the endpoint's queue. Starting a started endpoint does nothing.
func (e *Endpoint) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ref != nil {
		return nil
	}

	var opts []AcquireOption
	if e.cfg.Size != nil {
		opts = append(opts, WithSize(*e.cfg.Size))
	}
	if e.cfg.MultipleConsumers != nil {
		opts = append(opts, WithMultipleConsumers(*e.cfg.MultipleConsumers))
	}
	ref, err := e.registry.Acquire(e.cfg.URI, opts...)
	if err != nil {
		return fmt.Errorf("failed to start endpoint %s: %w", e.cfg.URI, err)
	}
	e.ref = ref
	e.log.Debugw("endpoint started", "references", ref.Count())
	return nil
}

// Stop releases the endpoint's queue. Stopping a stopped endpoint does nothing.
func (e *Endpoint) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ref == nil {
		return
	}
	e.registry.Release(e.cfg.URI)
	e.ref = nil
	e.log.Debug("endpoint stopped")
}

// Reference returns the acquired queue reference, or ErrEndpointNotStarted.
func (e *Endpoint) Reference() (*QueueReference, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ref == nil {
		return nil, ErrEndpointNotStarted
	}
	return e.ref, nil
}

// Queue returns the acquired shared queue, or ErrEndpointNotStarted.
func (e *Endpoint) Queue() (*queue.BlockingQueue, error) {
	ref, err := e.Reference()
	if err != nil {
		return nil, err
	}
	return ref.Queue(), nil
}
