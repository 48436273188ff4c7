package moderation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/internal/cache"
	"github.com/BaSui01/modflow/internal/metrics"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🛂 策略缓存
// =============================================================================

// DefaultPolicyTTL 策略本地缓存的存活时间。
// 读取允许最多 TTL 的陈旧；写入立即失效，不容忍陈旧写竞争。
const DefaultPolicyTTL = 60 * time.Second

// DefaultPolicy 硬编码默认策略。
// 存储读取失败时的降级终点：审核必须降级到某个确定的策略。
func DefaultPolicy() types.Policy {
	return types.Policy{
		Enabled:    true,
		StrictMode: false,
		AutoReject: false,
		Thresholds: classify.DefaultThresholds(),
	}
}

// PolicyCache 进程内策略缓存，由 Orchestrator 持有（无模块级状态）。
// 本地副本带 TTL；可选 Redis 二级缓存用于跨实例失效。
type PolicyCache struct {
	store   Store
	shared  SharedCache
	metrics *metrics.Collector
	logger  *zap.Logger
	ttl     time.Duration

	mu        sync.RWMutex
	current   *types.Policy
	fetchedAt time.Time
}

// NewPolicyCache 创建策略缓存；shared 可为 nil。
func NewPolicyCache(s Store, shared SharedCache, collector *metrics.Collector, ttl time.Duration, logger *zap.Logger) *PolicyCache {
	if ttl <= 0 {
		ttl = DefaultPolicyTTL
	}
	return &PolicyCache{
		store:   s,
		shared:  shared,
		metrics: collector,
		logger:  logger.With(zap.String("component", "policy_cache")),
		ttl:     ttl,
	}
}

// Get 返回当前策略。本地新鲜 → Redis → 存储 → 硬编码默认，逐级降级。
func (pc *PolicyCache) Get(ctx context.Context) types.Policy {
	pc.mu.RLock()
	if pc.current != nil && time.Since(pc.fetchedAt) < pc.ttl {
		policy := *pc.current
		pc.mu.RUnlock()
		if pc.metrics != nil {
			pc.metrics.RecordPolicyCacheHit()
		}
		return policy
	}
	pc.mu.RUnlock()

	if pc.metrics != nil {
		pc.metrics.RecordPolicyCacheMiss()
	}
	policy := pc.load(ctx)
	pc.replace(policy)
	return policy
}

// Update 应用补丁：写穿存储并立即失效两级缓存。
func (pc *PolicyCache) Update(ctx context.Context, patch types.PolicyPatch) (types.Policy, error) {
	current := pc.load(ctx)
	next := current.Apply(patch)

	if err := pc.store.SavePolicy(ctx, next); err != nil {
		return types.Policy{}, err
	}
	pc.Invalidate(ctx)

	pc.logger.Info("moderation policy updated",
		zap.Bool("enabled", next.Enabled),
		zap.Bool("strict_mode", next.StrictMode),
		zap.Bool("auto_reject", next.AutoReject),
	)
	return next, nil
}

// Invalidate 清空本地副本并删除 Redis 键；下一次 Get 强制回源。
func (pc *PolicyCache) Invalidate(ctx context.Context) {
	pc.mu.Lock()
	pc.current = nil
	pc.mu.Unlock()

	if pc.shared != nil {
		if err := pc.shared.Delete(ctx, cache.KeyPolicy); err != nil {
			pc.logger.Warn("failed to invalidate shared policy cache", zap.Error(err))
		}
	}
}

// load 按 Redis → 存储 → 默认 的顺序取策略
func (pc *PolicyCache) load(ctx context.Context) types.Policy {
	if pc.shared != nil {
		var cached types.Policy
		if err := pc.shared.GetJSON(ctx, cache.KeyPolicy, &cached); err == nil {
			return normalizePolicy(cached)
		}
	}

	stored, err := pc.store.LoadPolicy(ctx)
	if err != nil {
		pc.logger.Warn("failed to load moderation policy, using default", zap.Error(err))
		return DefaultPolicy()
	}

	// 存储为空时回落默认策略；两种来源都写回共享缓存
	policy := DefaultPolicy()
	if stored != nil {
		policy = normalizePolicy(*stored)
	}
	if pc.shared != nil {
		if err := pc.shared.SetJSON(ctx, cache.KeyPolicy, policy, pc.ttl); err != nil {
			pc.logger.Warn("failed to populate shared policy cache", zap.Error(err))
		}
	}
	return policy
}

// replace 原子替换本地副本
func (pc *PolicyCache) replace(policy types.Policy) {
	pc.mu.Lock()
	pc.current = &policy
	pc.fetchedAt = time.Now()
	pc.mu.Unlock()
}

// normalizePolicy 补齐缺失的分类阈值，保证策略总是完整的。
func normalizePolicy(p types.Policy) types.Policy {
	defaults := classify.DefaultThresholds()
	if p.Thresholds == nil {
		p.Thresholds = defaults
		return p
	}
	for cat, v := range defaults {
		if _, ok := p.Thresholds[cat]; !ok {
			p.Thresholds[cat] = v
		}
	}
	return p
}
