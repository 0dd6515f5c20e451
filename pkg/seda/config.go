package seda

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultConcurrentConsumers is used when no consumer concurrency is configured.
	DefaultConcurrentConsumers = 1
	// MaxConcurrentConsumers is the hard ceiling on consumer workers per
	// endpoint when limitConcurrentConsumers is enabled.
	MaxConcurrentConsumers = 500
)

// Config holds registry-wide settings. It is set once at startup.
type Config struct {
	QueueSize           int `env:"SEDA_QUEUE_SIZE"           envDefault:"0"` // Default capacity of new queues, 0 = unbounded
	ConcurrentConsumers int `env:"SEDA_CONCURRENT_CONSUMERS" envDefault:"1"` // Default consumer workers per endpoint
}

// DefaultConfig returns a Config with unbounded queues and a single consumer.
func DefaultConfig() Config {
	return Config{
		QueueSize:           0,
		ConcurrentConsumers: DefaultConcurrentConsumers,
	}
}

// LoadConfig loads the registry configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse seda config: %w", err)
	}
	return cfg.WithDefaults(), nil
}

// WithDefaults returns a copy of the config with out-of-range values replaced.
// This method does not mutate the original config.
func (c Config) WithDefaults() Config {
	if c.QueueSize < 0 {
		c.QueueSize = 0
	}
	if c.ConcurrentConsumers <= 0 {
		c.ConcurrentConsumers = DefaultConcurrentConsumers
	}
	return c
}
