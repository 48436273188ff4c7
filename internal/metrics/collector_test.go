package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollectorWithRegistry("modflow", reg, zap.NewNop()), reg
}

func TestCollector_RecordModeration(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordModeration("text", "approved", 50*time.Millisecond)
	c.RecordModeration("text", "rejected", 80*time.Millisecond)
	c.RecordModeration("audio", "rejected", 120*time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(c.moderationsTotal.WithLabelValues("text", "approved")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.moderationsTotal.WithLabelValues("text", "rejected")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.moderationsTotal.WithLabelValues("audio", "rejected")), 1e-9)
}

func TestCollector_TaskGauge(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordTaskSubmitted()
	c.RecordTaskSubmitted()
	assert.InDelta(t, 2, testutil.ToFloat64(c.pendingTasks), 1e-9)

	c.RecordTaskCompleted("completed", "webhook")
	assert.InDelta(t, 1, testutil.ToFloat64(c.pendingTasks), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.tasksCompleted.WithLabelValues("completed", "webhook")), 1e-9)
}

func TestCollector_FlagAndFailOpen(t *testing.T) {
	c, reg := newTestCollector(t)

	c.RecordFlag("violence", "high")
	c.RecordFailOpen("text")
	c.RecordProviderError("UPSTREAM_TIMEOUT")
	c.RecordWebhook("unknown_task")
	c.RecordPolicyCacheHit()
	c.RecordPolicyCacheMiss()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["modflow_flags_total"])
	assert.True(t, names["modflow_fail_open_total"])
	assert.True(t, names["modflow_provider_errors_total"])
	assert.True(t, names["modflow_webhooks_received_total"])
}
