package main

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/seda-registry/pkg/queue"
	"github.com/ava-labs/seda-registry/pkg/scheduler"
	"github.com/ava-labs/seda-registry/pkg/seda"
)

const headerSequence = "sequence"

// newHeartbeat builds the n-th heartbeat message for a channel.
func newHeartbeat(channel string, n uint64, now time.Time) queue.Msg {
	msg := queue.NewMsg(channel, []byte("heartbeat "+now.UTC().Format(time.RFC3339Nano)))
	msg.Key = []byte(channel)
	msg.Headers = map[string]string{headerSequence: strconv.FormatUint(n, 10)}
	msg.CreatedAt = now
	return msg
}

var _ scheduler.Job = (*heartbeatJob)(nil)

// heartbeatJob publishes one numbered heartbeat per run. Runs are sequential,
// so the sequence needs no locking.
type heartbeatJob struct {
	log       *zap.SugaredLogger
	publisher queue.QueuePublisher
	channel   string
	seq       uint64
}

func newHeartbeatJob(log *zap.SugaredLogger, p queue.QueuePublisher, channel string) *heartbeatJob {
	return &heartbeatJob{log: log, publisher: p, channel: channel}
}

func (h *heartbeatJob) Run(ctx context.Context, tick time.Time) error {
	h.seq++
	if err := h.publisher.Publish(ctx, newHeartbeat(h.channel, h.seq, tick)); err != nil {
		return err
	}
	h.log.Debugw("published heartbeat", "channel", h.channel, "sequence", h.seq)
	return nil
}

// statsJob refreshes the registry gauges and logs a summary.
func statsJob(log *zap.SugaredLogger, registry *seda.Registry) scheduler.JobFunc {
	return func(context.Context, time.Time) error {
		infos := registry.RefreshMetrics()
		queued := 0
		for _, info := range infos {
			queued += info.Queued
		}
		log.Debugw("registry stats", "channels", len(infos), "queuedMessages", queued)
		return nil
	}
}

// logProcessor logs every consumed message.
func logProcessor(log *zap.SugaredLogger) seda.Processor {
	return seda.ProcessorFunc(func(_ context.Context, msg queue.Msg) error {
		log.Infow("consumed message",
			"channel", msg.Channel,
			"id", msg.ID,
			"sequence", msg.Headers[headerSequence],
			"latency", time.Since(msg.CreatedAt),
			"value", string(msg.Value),
		)
		return nil
	})
}
