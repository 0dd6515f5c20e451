package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/seda-registry/pkg/metrics"
	"github.com/ava-labs/seda-registry/pkg/scheduler"
	"github.com/ava-labs/seda-registry/pkg/seda"
	"github.com/ava-labs/seda-registry/pkg/utils"
)

// channelPipeline is the producer and consumer attached to one channel.
type channelPipeline struct {
	key      string
	source   *seda.Endpoint
	sink     *seda.Endpoint
	producer *seda.Producer
	consumer *seda.Consumer
}

func (p *channelPipeline) stop(ctx context.Context) {
	p.producer.Close(ctx)
	p.sink.Stop()
}

func run(c *cli.Context) error {
	// Build configuration from CLI flags
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	sugar, err := utils.NewSugaredLogger("sedad", cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	sugar.Infow("config",
		"verbose", cfg.Verbose,
		"channels", cfg.Channels,
		"queueSize", cfg.Seda.QueueSize,
		"concurrentConsumers", cfg.Seda.ConcurrentConsumers,
		"produceInterval", cfg.ProduceInterval,
		"statsInterval", cfg.StatsInterval,
		"metricsHost", cfg.MetricsHost,
		"metricsPort", cfg.MetricsPort,
		"instance", cfg.Instance,
		"environment", cfg.Environment,
		"region", cfg.Region,
		"cloudProvider", cfg.CloudProvider,
	)

	// Initialize Prometheus metrics with labels for multi-instance filtering
	promRegistry := prometheus.NewRegistry()
	m, err := metrics.NewWithLabels(promRegistry, cfg.MetricsLabels())
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	registry, err := seda.NewRegistry(sugar, cfg.Seda, seda.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to create queue registry: %w", err)
	}
	defer registry.Close()

	pipelines, err := startPipelines(sugar, registry, cfg.Channels)
	if err != nil {
		return err
	}

	// Start metrics server
	metricsServer := metrics.NewServer(cfg.MetricsAddr(), promRegistry,
		metrics.WithHandler("/channels", registry.ChannelsHandler()),
	)
	metricsErrCh := metricsServer.Start()
	if cfg.MetricsHost == "" {
		sugar.Infof("metrics server listening on http://0.0.0.0:%d/metrics", cfg.MetricsPort)
	} else {
		sugar.Infof("metrics server listening on http://%s/metrics", cfg.MetricsAddr())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	for _, p := range pipelines {
		g.Go(func() error {
			if err := p.consumer.Start(gctx); err != nil {
				return fmt.Errorf("consumer %s error: %w", p.key, err)
			}
			return nil
		})
		g.Go(func() error {
			heartbeat := newHeartbeatJob(sugar, p.producer, p.key)
			if err := scheduler.Start(gctx, "heartbeat "+p.key, cfg.heartbeatSchedule(), heartbeat); err != nil {
				return fmt.Errorf("producer %s error: %w", p.key, err)
			}
			return nil
		})
	}

	// Registry gauges are refreshed on a schedule in addition to every acquire and release
	g.Go(func() error {
		return scheduler.Start(gctx, "registry stats", cfg.statsSchedule(), statsJob(sugar, registry))
	})

	// Metrics server error monitoring goroutine
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-metricsErrCh:
			if err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		}
	})

	sugar.Infow("channels running", "channels", registry.Keys())

	// Wait for first error or completion from any goroutine
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	sugar.Info("stopping channel endpoints")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, p := range pipelines {
		p.stop(shutdownCtx)
	}

	// Gracefully shutdown metrics server
	sugar.Info("shutting down metrics server")
	if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
		sugar.Warnw("metrics server shutdown error", "error", shutdownErr)
	}

	sugar.Info("shutdown complete")
	return err
}

// startPipelines creates and starts a producer endpoint and a consumer
// endpoint for every channel URI. On failure every endpoint started so far
// is stopped again.
func startPipelines(log *zap.SugaredLogger, registry *seda.Registry, channels []string) ([]*channelPipeline, error) {
	var started []*seda.Endpoint
	fail := func(err error) ([]*channelPipeline, error) {
		for _, e := range started {
			e.Stop()
		}
		return nil, err
	}

	pipelines := make([]*channelPipeline, 0, len(channels))
	for _, uri := range channels {
		source, err := registry.NewEndpoint(uri)
		if err != nil {
			return fail(err)
		}
		sink, err := registry.NewEndpoint(uri)
		if err != nil {
			return fail(err)
		}
		for _, e := range []*seda.Endpoint{source, sink} {
			if err := e.Start(); err != nil {
				return fail(err)
			}
			started = append(started, e)
		}

		key := source.Config().Key
		pipelines = append(pipelines, &channelPipeline{
			key:      key,
			source:   source,
			sink:     sink,
			producer: source.Producer(),
			consumer: sink.Consumer(logProcessor(log.With("consumer", key))),
		})
	}
	return pipelines, nil
}
