package seda

import (
	"encoding/json"
	"net/http"
)

// ChannelInfo is a point-in-time view of one registered channel.
type ChannelInfo struct {
	Key               string `json:"key"`
	Size              *int   `json:"size,omitempty"`
	MultipleConsumers *bool  `json:"multipleConsumers,omitempty"`
	References        int    `json:"references"`
	Queued            int    `json:"queued"`
}

// Snapshot describes every registered channel, sorted by key.
// Counts are read under the registry lock so they are mutually consistent.
func (r *Registry) Snapshot() []ChannelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ChannelInfo, 0, len(r.queues))
	for _, key := range r.sortedKeysLocked() {
		ref := r.queues[key]
		infos = append(infos, ChannelInfo{
			Key:               key,
			Size:              ref.size,
			MultipleConsumers: ref.multipleConsumers,
			References:        ref.Count(),
			Queued:            ref.queue.Len(),
		})
	}
	return infos
}

// RefreshMetrics publishes the current registry state to the metrics gauges
// and returns the snapshot it was computed from.
func (r *Registry) RefreshMetrics() []ChannelInfo {
	infos := r.Snapshot()
	refs, queued := 0, 0
	for _, info := range infos {
		refs += info.References
		queued += info.Queued
	}
	r.metrics.UpdateRegistryMetrics(len(infos), refs)
	r.metrics.SetQueuedMessages(queued)
	return infos
}

// ChannelsHandler serves Snapshot as JSON.
func (r *Registry) ChannelsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := struct {
			Channels []ChannelInfo `json:"channels"`
		}{Channels: r.Snapshot()}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			r.log.Warnw("failed to encode channel snapshot", "error", err)
		}
	})
}
