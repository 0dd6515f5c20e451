package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

// runFlags returns all CLI flags for the sedad run command
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
		},
		// Channel configuration flags
		&cli.StringSliceFlag{
			Name:     "channel",
			Aliases:  []string{"c"},
			Usage:    "Channel endpoint URI, e.g. orders?size=100&concurrentConsumers=4 (repeatable)",
			EnvVars:  []string{"SEDA_CHANNELS"},
			Required: true,
		},
		&cli.IntFlag{
			Name:    "queue-size",
			Usage:   "Default capacity of channels that declare no size (0 = unbounded)",
			EnvVars: []string{"SEDA_QUEUE_SIZE"},
			Value:   0,
		},
		&cli.IntFlag{
			Name:    "concurrent-consumers",
			Usage:   "Default number of consumer workers per channel",
			EnvVars: []string{"SEDA_CONCURRENT_CONSUMERS"},
			Value:   1,
		},
		&cli.DurationFlag{
			Name:    "produce-interval",
			Usage:   "Interval between heartbeat messages published to each channel",
			EnvVars: []string{"SEDA_PRODUCE_INTERVAL"},
			Value:   time.Second,
		},
		&cli.DurationFlag{
			Name:    "stats-interval",
			Usage:   "Interval between registry gauge refreshes",
			EnvVars: []string{"SEDA_STATS_INTERVAL"},
			Value:   10 * time.Second,
		},
		// Metrics configuration flags
		&cli.StringFlag{
			Name:    "metrics-host",
			Usage:   "Host for Prometheus metrics server (empty for all interfaces)",
			EnvVars: []string{"METRICS_HOST"},
			Value:   "",
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Usage:   "Port for Prometheus metrics server",
			EnvVars: []string{"METRICS_PORT"},
			Value:   9090,
		},
		&cli.StringFlag{
			Name:    "instance",
			Usage:   "Instance name label for metrics (e.g., hostname or pod name)",
			EnvVars: []string{"INSTANCE_NAME"},
		},
		&cli.StringFlag{
			Name:    "environment",
			Usage:   "Deployment environment for metrics labels (e.g., 'production', 'staging')",
			EnvVars: []string{"ENVIRONMENT"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Cloud region for metrics labels (e.g., 'us-east-1')",
			EnvVars: []string{"REGION"},
		},
		&cli.StringFlag{
			Name:    "cloud-provider",
			Usage:   "Cloud provider for metrics labels (e.g., 'aws', 'oci', 'gcp')",
			EnvVars: []string{"CLOUD_PROVIDER"},
		},
	}
}
