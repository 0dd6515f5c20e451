package seda

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ava-labs/seda-registry/pkg/queue"
	"github.com/stretchr/testify/require"
)

// recordingProcessor collects processed message values and can fail on demand.
type recordingProcessor struct {
	mu     sync.Mutex
	values []string
	fail   func(queue.Msg) bool
}

func (p *recordingProcessor) Process(_ context.Context, msg queue.Msg) error {
	if p.fail != nil && p.fail(msg) {
		return errors.New("processing failed")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, string(msg.Value))
	return nil
}

func (p *recordingProcessor) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.values...)
}

var _ Processor = (*recordingProcessor)(nil)

func startEndpoint(t *testing.T, r *Registry, uri string) *Endpoint {
	t.Helper()
	e, err := r.NewEndpoint(uri)
	require.NoError(t, err)
	require.NoError(t, e.Start())
	return e
}

func TestProducer_PublishNotStarted(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	e, err := r.NewEndpoint("seda:orders")
	require.NoError(t, err)

	err = e.Producer().Publish(t.Context(), queue.NewMsg("", nil))
	require.ErrorIs(t, err, ErrEndpointNotStarted)
}

func TestProducer_PublishFillsChannel(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	e := startEndpoint(t, r, "seda:orders?size=2")
	p := e.Producer()

	require.NoError(t, p.Publish(t.Context(), queue.Msg{Value: []byte("1")}))

	q, err := e.Queue()
	require.NoError(t, err)
	msg, ok := q.Poll()
	require.True(t, ok)
	require.Equal(t, "seda:orders", msg.Channel)
	require.NotEmpty(t, msg.ID)
}

func TestProducer_PublishBlocksUntilContextDone(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	p := startEndpoint(t, r, "seda:orders?size=1").Producer()

	require.NoError(t, p.Publish(t.Context(), queue.NewMsg("", nil)))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := p.Publish(ctx, queue.NewMsg("", nil))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProducer_CloseReleasesReference(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	p := startEndpoint(t, r, "seda:orders").Producer()
	require.Equal(t, 1, r.Len())

	p.Close(t.Context())
	p.Close(t.Context())
	require.Equal(t, 0, r.Len())
}

func TestConsumer_ProcessesPublishedMessages(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	producer := startEndpoint(t, r, "seda:orders?size=4").Producer()
	consumerEndpoint := startEndpoint(t, r, "seda:orders?concurrentConsumers=3&multipleConsumers=true")

	proc := &recordingProcessor{}
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- consumerEndpoint.Consumer(proc).Start(ctx)
	}()

	const total = 50
	for i := 0; i < total; i++ {
		require.NoError(t, producer.Publish(t.Context(), queue.NewMsg("", []byte{byte('a' + i%26)})))
	}

	require.Eventually(t, func() bool {
		return len(proc.seen()) == total
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestConsumer_ProcessorErrorsAreNotFatal(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	producer := startEndpoint(t, r, "seda:orders").Producer()
	consumerEndpoint := startEndpoint(t, r, "seda:orders")

	var failures atomic.Int32
	proc := &recordingProcessor{fail: func(msg queue.Msg) bool {
		if string(msg.Value) == "bad" {
			failures.Add(1)
			return true
		}
		return false
	}}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- consumerEndpoint.Consumer(proc).Start(ctx)
	}()

	for _, v := range []string{"ok1", "bad", "ok2"} {
		require.NoError(t, producer.Publish(t.Context(), queue.NewMsg("", []byte(v))))
	}

	require.Eventually(t, func() bool {
		return len(proc.seen()) == 2 && failures.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"ok1", "ok2"}, proc.seen())

	cancel()
	require.NoError(t, <-done)
}

func TestConsumer_StopsWhenChannelDiscarded(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	e := startEndpoint(t, r, "seda:orders?concurrentConsumers=2")

	done := make(chan error, 1)
	go func() {
		done <- e.Consumer(ProcessorFunc(func(context.Context, queue.Msg) error { return nil })).Start(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	e.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after its channel was discarded")
	}
}

func TestConsumer_StartValidation(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	e, err := r.NewEndpoint("seda:orders")
	require.NoError(t, err)

	require.ErrorContains(t, e.Consumer(nil).Start(t.Context()), "invalid processor")

	proc := ProcessorFunc(func(context.Context, queue.Msg) error { return nil })
	require.ErrorIs(t, e.Consumer(proc).Start(t.Context()), ErrEndpointNotStarted)
}
