package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJob struct {
	mock.Mock
}

func (m *mockJob) Run(ctx context.Context, tick time.Time) error {
	args := m.Called(ctx, tick)
	return args.Error(0)
}

func testConfig() Config {
	return Config{
		Interval:     5 * time.Millisecond,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}
}

func TestStart_RunsAndCancels(t *testing.T) {
	t.Parallel()
	job := &mockJob{}

	called := make(chan struct{}, 1)
	job.
		On("Run", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			tick := args.Get(1).(time.Time)
			assert.False(t, tick.IsZero())
			select {
			case called <- struct{}{}:
			default:
			}
		}).
		Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Start(ctx, "heartbeat", testConfig(), job)
	}()

	select {
	case <-called:
		cancel()
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for job run")
	}

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for scheduler to exit")
	}
	job.AssertExpectations(t)
}

func TestStart_ErrorPropagatesAfterRetries(t *testing.T) {
	t.Parallel()
	job := &mockJob{}
	job.
		On("Run", mock.Anything, mock.Anything).
		Return(errors.New("publish failed")).
		Times(4) // initial try + 3 retries

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := Start(ctx, "heartbeat", testConfig(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heartbeat failed after 4 attempts")
	assert.Contains(t, err.Error(), "publish failed")
	job.AssertExpectations(t)
}

func TestStart_RetrySucceeds(t *testing.T) {
	t.Parallel()
	job := &mockJob{}
	job.On("Run", mock.Anything, mock.Anything).Return(errors.New("transient")).Once()

	recovered := make(chan struct{})
	job.
		On("Run", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case <-recovered:
			default:
				close(recovered)
			}
		}).
		Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Start(ctx, "heartbeat", testConfig(), job)
	}()

	select {
	case <-recovered:
		cancel()
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for retry")
	}
	require.NoError(t, <-done)
}

func TestStart_AttemptTimeout(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.AttemptTimeout = 5 * time.Millisecond
	cfg.MaxRetries = 0

	job := JobFunc(func(ctx context.Context, _ time.Time) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := Start(ctx, "slow", cfg, job)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStart_CancelledJobErrorIsNotFailure(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	job := JobFunc(func(context.Context, time.Time) error {
		cancel()
		return errors.New("queue closed")
	})

	require.NoError(t, Start(ctx, "heartbeat", testConfig(), job))
}

func TestStart_ImmediateCancel(t *testing.T) {
	t.Parallel()
	job := &mockJob{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Start(ctx, "heartbeat", Config{Interval: time.Second}, job)
	assert.NoError(t, err)
	job.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestStart_InvalidArguments(t *testing.T) {
	t.Parallel()
	err := Start(context.Background(), "heartbeat", Config{}, &mockJob{})
	require.ErrorContains(t, err, "invalid interval")

	err = Start(context.Background(), "heartbeat", testConfig(), nil)
	require.ErrorContains(t, err, "invalid job")
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, time.Second, cfg.AttemptTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 300*time.Millisecond, cfg.RetryBackoff)
}
