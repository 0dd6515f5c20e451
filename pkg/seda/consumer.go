package seda

import (
	"context"
	"errors"
	"time"

	"github.com/ava-labs/seda-registry/pkg/queue"
	"golang.org/x/sync/errgroup"
)

// Processor handles messages taken from a channel.
type Processor interface {
	Process(ctx context.Context, msg queue.Msg) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, msg queue.Msg) error

func (f ProcessorFunc) Process(ctx context.Context, msg queue.Msg) error {
	return f(ctx, msg)
}

// Consumer runs the endpoint's configured number of workers, each taking
// messages from the channel queue and handing them to the processor.
type Consumer struct {
	endpoint  *Endpoint
	processor Processor
}

// Consumer returns a consumer for the endpoint.
func (e *Endpoint) Consumer(p Processor) *Consumer {
	return &Consumer{endpoint: e, processor: p}
}

// Start blocks running ConcurrentConsumers workers until ctx is done or the
// channel queue is closed. Processor errors are logged and counted; they do
// not stop the workers.
func (c *Consumer) Start(ctx context.Context) error {
	if c.processor == nil {
		return errors.New("invalid processor: must not be nil")
	}
	ref, err := c.endpoint.Reference()
	if err != nil {
		return err
	}

	workers := c.endpoint.cfg.ConcurrentConsumers
	if multiple, ok := ref.MultipleConsumers(); ok && !multiple && workers > 1 {
		c.endpoint.log.Warnw("channel declared without multiple consumers, running several workers anyway",
			"workers", workers,
		)
	}
	c.endpoint.log.Infow("starting consumer", "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return c.work(gctx, ref.Queue())
		})
	}
	err = g.Wait()
	c.endpoint.log.Infow("consumer stopped", "workers", workers)
	return err
}

func (c *Consumer) work(ctx context.Context, q *queue.BlockingQueue) error {
	m := c.endpoint.registry.metrics
	key := c.endpoint.cfg.Key
	for {
		msg, err := q.Take(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		m.IncMessagesInFlight()
		start := time.Now()
		err = c.processor.Process(ctx, msg)
		m.RecordMessageProcessed(key, err, time.Since(start).Seconds())
		m.DecMessagesInFlight()
		if err != nil {
			c.endpoint.log.Warnw("failed to process message", "id", msg.ID, "error", err)
		}
	}
}
