package seda

import (
	"context"
	"fmt"
	"sync"

	"github.com/ava-labs/seda-registry/pkg/queue"
)

var _ queue.QueuePublisher = (*Producer)(nil)

// Producer publishes messages onto an endpoint's channel.
type Producer struct {
	endpoint *Endpoint
	once     sync.Once
}

// Producer returns a publisher for the endpoint. The endpoint must be started
// before Publish is called; Close stops it.
func (e *Endpoint) Producer() *Producer {
	return &Producer{endpoint: e}
}

// Publish puts msg on the channel queue, blocking while a bounded queue is full.
//
// Publish returns ctx.Err() if the context is done first, and
// queue.ErrClosed if the channel was discarded.
func (p *Producer) Publish(ctx context.Context, msg queue.Msg) error {
	q, err := p.endpoint.Queue()
	if err != nil {
		return err
	}
	if msg.Channel == "" {
		msg.Channel = p.endpoint.cfg.Key
	}

	err = q.Put(ctx, msg)
	p.endpoint.registry.metrics.RecordPublish(p.endpoint.cfg.Key, err)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.endpoint.cfg.Key, err)
	}
	return nil
}

// Close stops the producer's endpoint. Calling Close multiple times does nothing.
func (p *Producer) Close(_ context.Context) {
	p.once.Do(p.endpoint.Stop)
}
