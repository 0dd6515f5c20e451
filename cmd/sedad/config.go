package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ava-labs/seda-registry/pkg/metrics"
	"github.com/ava-labs/seda-registry/pkg/scheduler"
	"github.com/ava-labs/seda-registry/pkg/seda"
)

// Config holds all configuration for the sedad application
type Config struct {
	// Application settings
	Verbose bool

	// Channel settings
	Channels        []string
	Seda            seda.Config
	ProduceInterval time.Duration
	StatsInterval   time.Duration

	// Metrics settings
	MetricsHost   string
	MetricsPort   int
	Instance      string
	Environment   string
	Region        string
	CloudProvider string
}

// MetricsAddr returns the formatted metrics address
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.MetricsHost, c.MetricsPort)
}

// MetricsLabels returns the constant labels applied to every metric
func (c *Config) MetricsLabels() metrics.Labels {
	return metrics.Labels{
		Instance:      c.Instance,
		Environment:   c.Environment,
		Region:        c.Region,
		CloudProvider: c.CloudProvider,
	}
}

// heartbeatSchedule publishes once per produce interval. A publish blocks
// while its queue is full, so attempts are unbounded and never retried.
func (c *Config) heartbeatSchedule() scheduler.Config {
	return scheduler.Config{Interval: c.ProduceInterval}
}

// statsSchedule refreshes registry gauges once per stats interval.
func (c *Config) statsSchedule() scheduler.Config {
	cfg := scheduler.DefaultConfig()
	cfg.Interval = c.StatsInterval
	return cfg
}

// buildConfig builds a Config from CLI context flags
func buildConfig(c *cli.Context) (*Config, error) {
	channels := splitChannels(c.StringSlice("channel"))
	if len(channels) == 0 {
		return nil, errors.New("at least one channel is required")
	}

	interval := c.Duration("produce-interval")
	if interval <= 0 {
		return nil, fmt.Errorf("produce-interval must be positive, got %s", interval)
	}

	statsInterval := c.Duration("stats-interval")
	if statsInterval <= 0 {
		return nil, fmt.Errorf("stats-interval must be positive, got %s", statsInterval)
	}

	queueSize := c.Int("queue-size")
	if queueSize < 0 {
		return nil, fmt.Errorf("queue-size must not be negative, got %d", queueSize)
	}

	consumers := c.Int("concurrent-consumers")
	if err := seda.ValidateConcurrentConsumers(consumers, true); err != nil {
		return nil, fmt.Errorf("invalid concurrent-consumers: %w", err)
	}

	return &Config{
		Verbose:  c.Bool("verbose"),
		Channels: channels,
		Seda: seda.Config{
			QueueSize:           queueSize,
			ConcurrentConsumers: consumers,
		},
		ProduceInterval: interval,
		StatsInterval:   statsInterval,
		MetricsHost:     c.String("metrics-host"),
		MetricsPort:     c.Int("metrics-port"),
		Instance:        c.String("instance"),
		Environment:     c.String("environment"),
		Region:          c.String("region"),
		CloudProvider:   c.String("cloud-provider"),
	}, nil
}

// splitChannels trims the channel URIs and drops empty entries left by blank
// flag values or trailing separators in SEDA_CHANNELS.
func splitChannels(raw []string) []string {
	channels := make([]string, 0, len(raw))
	for _, ch := range raw {
		ch = strings.TrimSpace(ch)
		if ch != "" {
			channels = append(channels, ch)
		}
	}
	return channels
}
