package seda

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ava-labs/seda-registry/pkg/metrics"
	"github.com/ava-labs/seda-registry/pkg/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSnapshot(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())

	b, err := r.Acquire("seda:b", WithSize(3), WithMultipleConsumers(true))
	require.NoError(t, err)
	_, err = r.Acquire("seda:b")
	require.NoError(t, err)
	_, err = r.Acquire("seda:a")
	require.NoError(t, err)
	require.True(t, b.Queue().Offer(queue.NewMsg("seda:b", nil)))

	got := r.Snapshot()
	require.Equal(t, []ChannelInfo{
		{Key: "seda:a", References: 1, Queued: 0},
		{Key: "seda:b", Size: intPtr(3), MultipleConsumers: boolPtr(true), References: 2, Queued: 1},
	}, got)
}

func TestChannelsHandler(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, DefaultConfig())
	_, err := r.Acquire("seda:orders", WithSize(10))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ChannelsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/channels", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Channels []ChannelInfo `json:"channels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Channels, 1)
	require.Equal(t, "seda:orders", body.Channels[0].Key)
	require.Equal(t, 10, *body.Channels[0].Size)
	require.Equal(t, 1, body.Channels[0].References)
}

func TestRefreshMetrics(t *testing.T) {
	t.Parallel()
	promReg := prometheus.NewRegistry()
	m, err := metrics.New(promReg)
	require.NoError(t, err)
	r, err := NewRegistry(zaptest.NewLogger(t).Sugar(), DefaultConfig(), WithMetrics(m))
	require.NoError(t, err)

	a, err := r.Acquire("seda:a")
	require.NoError(t, err)
	_, err = r.Acquire("seda:a")
	require.NoError(t, err)
	b, err := r.Acquire("seda:b", WithSize(5))
	require.NoError(t, err)
	require.True(t, a.Queue().Offer(queue.NewMsg("seda:a", nil)))
	require.True(t, b.Queue().Offer(queue.NewMsg("seda:b", nil)))
	require.True(t, b.Queue().Offer(queue.NewMsg("seda:b", nil)))

	infos := r.RefreshMetrics()
	require.Len(t, infos, 2)

	require.Equal(t, float64(2), gaugeValue(t, promReg, "seda_registry_channels"))
	require.Equal(t, float64(3), gaugeValue(t, promReg, "seda_registry_references"))
	require.Equal(t, float64(3), gaugeValue(t, promReg, "seda_registry_queued_messages"))
}

func gaugeValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	mfs, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}
