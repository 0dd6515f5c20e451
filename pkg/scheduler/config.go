package scheduler

import "time"

// Config holds the configuration for a periodic job.
type Config struct {
	Interval       time.Duration // Interval between runs
	AttemptTimeout time.Duration // Timeout for each attempt, 0 = bounded only by the parent context
	MaxRetries     int           // Maximum number of retry attempts for a failed run
	RetryBackoff   time.Duration // Backoff duration between retry attempts
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:       30 * time.Second,
		AttemptTimeout: 1 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   300 * time.Millisecond,
	}
}
