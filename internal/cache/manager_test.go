package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	m, err := NewManager(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m, mr
}

func TestManager_GetSet(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	val, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestManager_JSONRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	type payload struct {
		Enabled bool               `json:"enabled"`
		Scores  map[string]float64 `json:"scores"`
	}
	in := payload{Enabled: true, Scores: map[string]float64{"violence": 0.8}}
	require.NoError(t, m.SetJSON(ctx, KeyPolicy, in, time.Minute))

	var out payload
	require.NoError(t, m.GetJSON(ctx, KeyPolicy, &out))
	assert.True(t, out.Enabled)
	assert.InDelta(t, 0.8, out.Scores["violence"], 1e-9)
}

func TestManager_Delete(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, m.Delete(ctx, "k"))
	_, err := m.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
}

func TestManager_TTLExpiry(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)
	_, err := m.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
}

func TestManager_Closed(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Close())

	err := m.Set(context.Background(), "k", "v", time.Minute)
	assert.Error(t, err)
	// double close is safe
	assert.NoError(t, m.Close())
}

func TestStatsKey(t *testing.T) {
	assert.Equal(t, "modflow:stats:7d", StatsKey(7))
}
