package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Job is one unit of periodic work.
type Job interface {
	Run(ctx context.Context, tick time.Time) error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context, tick time.Time) error

func (f JobFunc) Run(ctx context.Context, tick time.Time) error {
	return f(ctx, tick)
}

// Start runs job every cfg.Interval until ctx is done. A failed run is retried
// up to cfg.MaxRetries times, cfg.RetryBackoff apart.
//
// Returns nil on context cancellation (graceful shutdown), or an error if a
// run still fails after all retries.
func Start(ctx context.Context, name string, cfg Config, job Job) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("invalid interval for %s: %s", name, cfg.Interval)
	}
	if job == nil {
		return errors.New("invalid job: must not be nil")
	}

	t := time.NewTicker(cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			// Graceful shutdown - exit without error
			return nil

		case tick := <-t.C:
			var lastErr error
			for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
				if ctx.Err() != nil {
					return nil
				}

				lastErr = runAttempt(ctx, cfg.AttemptTimeout, job, tick)
				if lastErr == nil {
					break
				}

				// Failures caused by shutdown are not job failures
				if ctx.Err() != nil {
					return nil
				}

				if attempt < cfg.MaxRetries {
					select {
					case <-time.After(cfg.RetryBackoff):
					case <-ctx.Done():
						return nil
					}
				}
			}

			if lastErr != nil {
				return fmt.Errorf("%s failed after %d attempts: %w", name, cfg.MaxRetries+1, lastErr)
			}
		}
	}
}

func runAttempt(ctx context.Context, timeout time.Duration, job Job, tick time.Time) error {
	if timeout <= 0 {
		return job.Run(ctx, tick)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return job.Run(attemptCtx, tick)
}
