package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/internal/cache"
	"github.com/BaSui01/modflow/testutil"
	"github.com/BaSui01/modflow/types"
)

func newSharedCache(t *testing.T) *cache.Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	m, err := cache.NewManager(cache.Config{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestPolicyCache_DefaultWhenStoreEmpty(t *testing.T) {
	pc := NewPolicyCache(newTestStore(t), nil, nil, 0, zap.NewNop())

	policy := pc.Get(context.Background())
	assert.True(t, policy.Enabled)
	assert.False(t, policy.FailClosed())
	assert.Equal(t, classify.DefaultThresholds(), policy.Thresholds)
}

func TestPolicyCache_UpdateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	pc := NewPolicyCache(s, nil, nil, 0, zap.NewNop())
	ctx := context.Background()

	strict := true
	updated, err := pc.Update(ctx, types.PolicyPatch{
		StrictMode: &strict,
		Thresholds: map[types.Category]float64{types.CategorySpam: 0.9},
	})
	require.NoError(t, err)
	assert.True(t, updated.StrictMode)
	assert.InDelta(t, 0.9, updated.Thresholds[types.CategorySpam], 1e-9)

	// 未覆盖的分类保留默认阈值
	assert.InDelta(t, 0.4, updated.Thresholds[types.CategorySelfHarm], 1e-9)

	// 新实例从存储读到同一份策略
	fresh := NewPolicyCache(s, nil, nil, 0, zap.NewNop()).Get(ctx)
	assert.True(t, fresh.StrictMode)
	assert.InDelta(t, 0.9, fresh.Thresholds[types.CategorySpam], 1e-9)
}

func TestPolicyCache_LocalCacheServesWithinTTL(t *testing.T) {
	s := newTestStore(t)
	pc := NewPolicyCache(s, nil, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	first := pc.Get(ctx)

	// 绕过缓存直接改存储；本地副本在 TTL 内继续生效
	enabled := false
	policy := first.Apply(types.PolicyPatch{Enabled: &enabled})
	require.NoError(t, s.SavePolicy(ctx, policy))

	assert.True(t, pc.Get(ctx).Enabled)

	pc.Invalidate(ctx)
	assert.False(t, pc.Get(ctx).Enabled)
}

func TestPolicyCache_SharedCachePropagation(t *testing.T) {
	s := newTestStore(t)
	shared := newSharedCache(t)
	pc := NewPolicyCache(s, shared, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	_ = pc.Get(ctx)

	// 回源后策略被写入共享缓存
	var cached types.Policy
	require.NoError(t, shared.GetJSON(ctx, cache.KeyPolicy, &cached))
	assert.True(t, cached.Enabled)

	// 更新使共享键失效
	enabled := false
	_, err := pc.Update(ctx, types.PolicyPatch{Enabled: &enabled})
	require.NoError(t, err)
	err = shared.GetJSON(ctx, cache.KeyPolicy, &cached)
	assert.True(t, cache.IsCacheMiss(err))
}

func TestPolicyCache_FallsBackOnStoreError(t *testing.T) {
	s := newTestStore(t)
	pc := NewPolicyCache(s, nil, nil, 0, zap.NewNop())
	ctx := testutil.CancelledContext()

	// 存储读取失败时降级到硬编码默认，审核不中断
	policy := pc.Get(ctx)
	assert.True(t, policy.Enabled)
	assert.Equal(t, classify.DefaultThresholds(), policy.Thresholds)
}
