package moderation

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/internal/cache"
	"github.com/BaSui01/modflow/internal/metrics"
	"github.com/BaSui01/modflow/internal/store"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🎛️ 审核调度器
// =============================================================================

// batchConcurrency 批量审核的并发上限
const batchConcurrency = 10

// disabledModelVersion 全局开关关闭时的放行标记
const disabledModelVersion = "moderation-disabled"

// statsCacheTTL 统计结果的共享缓存存活时间
const statsCacheTTL = time.Minute

// Options 调度器装配参数；Shared、Archiver、Sink 均可为 nil。
type Options struct {
	Provider classify.Provider
	Store    Store
	Shared   SharedCache
	Archiver Archiver
	Sink     EventSink
	Metrics  *metrics.Collector
	Logger   *zap.Logger

	// WebhookURL 视频异步回调地址；为空时只靠轮询收尾
	WebhookURL string

	// PolicyTTL 策略本地缓存存活时间；零值用 DefaultPolicyTTL
	PolicyTTL time.Duration
}

// Orchestrator 审核统一入口：按模态分发、维护策略缓存、
// 聚合统计并发布决定事件。所有方法并发安全。
type Orchestrator struct {
	text    *TextModerator
	audio   *AudioModerator
	video   *VideoModerator
	policy  *PolicyCache
	store   Store
	shared  SharedCache
	sink    EventSink
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewOrchestrator 装配审核调度器
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		text:    NewTextModerator(opts.Provider, opts.Store, opts.Metrics, logger),
		audio:   NewAudioModerator(opts.Provider, opts.Store, opts.Metrics, logger),
		video:   NewVideoModerator(opts.Provider, opts.Store, opts.Archiver, opts.Metrics, opts.WebhookURL, logger),
		policy:  NewPolicyCache(opts.Store, opts.Shared, opts.Metrics, opts.PolicyTTL, logger),
		store:   opts.Store,
		shared:  opts.Shared,
		sink:    opts.Sink,
		metrics: opts.Metrics,
		logger:  logger.With(zap.String("component", "orchestrator")),
	}
}

// Moderate 审核单条内容。
// 全局开关关闭时零成本放行：不调服务商、不写日志、不计耗时。
func (o *Orchestrator) Moderate(ctx context.Context, content types.Content) (*types.Decision, error) {
	policy := o.policy.Get(ctx)
	if !policy.Enabled {
		return approvedDecision(types.NewResult(nil, nil, 0, disabledModelVersion)), nil
	}

	decision, err := o.dispatch(ctx, content, policy)
	if err != nil {
		return nil, err
	}
	o.publish(content, decision)
	return decision, nil
}

// ModerateBatch 并发审核多条内容，按 ContentID 返回各自决定。
// 策略只解析一次，批内所有条目用同一快照。
func (o *Orchestrator) ModerateBatch(ctx context.Context, contents []types.Content) map[string]*types.Decision {
	policy := o.policy.Get(ctx)
	out := make(map[string]*types.Decision, len(contents))
	if !policy.Enabled {
		for _, c := range contents {
			out[c.ContentID] = approvedDecision(types.NewResult(nil, nil, 0, disabledModelVersion))
		}
		return out
	}

	sem := semaphore.NewWeighted(batchConcurrency)
	decisions := make([]*types.Decision, len(contents))
	for i := range contents {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		go func(i int) {
			defer sem.Release(1)
			d, err := o.dispatch(ctx, contents[i], policy)
			if err != nil {
				o.logger.Warn("batch item rejected",
					zap.String("content_id", contents[i].ContentID),
					zap.Error(err),
				)
				return
			}
			decisions[i] = d
			o.publish(contents[i], d)
		}(i)
	}
	// 等待全部槽位归还
	if err := sem.Acquire(context.Background(), batchConcurrency); err == nil {
		sem.Release(batchConcurrency)
	}

	for i, c := range contents {
		if decisions[i] != nil {
			out[c.ContentID] = decisions[i]
		}
	}
	return out
}

// dispatch 按模态分发到具体审核器
func (o *Orchestrator) dispatch(ctx context.Context, content types.Content, policy types.Policy) (*types.Decision, error) {
	switch content.Modality {
	case types.ModalityText:
		return o.text.Moderate(ctx, content, policy), nil
	case types.ModalityAudio:
		return o.audio.Moderate(ctx, content, policy), nil
	case types.ModalityVideo:
		return o.video.Submit(ctx, content, policy), nil
	default:
		return nil, types.NewError(types.ErrValidation, "unknown content modality: "+string(content.Modality))
	}
}

// CheckTask 查询视频异步任务；终态时顺带发布决定事件。
func (o *Orchestrator) CheckTask(ctx context.Context, taskID string) (*types.Decision, error) {
	policy := o.policy.Get(ctx)
	decision, err := o.video.CheckTask(ctx, taskID, policy)
	if err != nil {
		return nil, err
	}
	if decision.Status == types.StatusApproved || decision.Status == types.StatusRejected {
		o.publishTask(ctx, taskID, decision)
	}
	return decision, nil
}

// ProcessWebhook 处理视频审核回调
func (o *Orchestrator) ProcessWebhook(ctx context.Context, body []byte) (*types.Decision, error) {
	policy := o.policy.Get(ctx)
	decision, err := o.video.ProcessWebhook(ctx, body, policy)
	if err != nil {
		return nil, err
	}
	if decision.Status == types.StatusApproved || decision.Status == types.StatusRejected {
		o.publishTask(ctx, decision.TaskID, decision)
	}
	return decision, nil
}

// Policy 返回当前生效策略
func (o *Orchestrator) Policy(ctx context.Context) types.Policy {
	return o.policy.Get(ctx)
}

// UpdatePolicy 应用策略补丁并使缓存失效
func (o *Orchestrator) UpdatePolicy(ctx context.Context, patch types.PolicyPatch) (types.Policy, error) {
	return o.policy.Update(ctx, patch)
}

// Stats 聚合近 days 天的审核统计，带一分钟共享缓存。
func (o *Orchestrator) Stats(ctx context.Context, days int) (*store.Stats, error) {
	if days <= 0 {
		days = 7
	}

	if o.shared != nil {
		var cached store.Stats
		if err := o.shared.GetJSON(ctx, cache.StatsKey(days), &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := o.store.StatsSince(ctx, days)
	if err != nil {
		return nil, err
	}

	pending, err := o.store.CountPendingTasks(ctx)
	if err == nil {
		stats.PendingTasks = pending
		if o.metrics != nil {
			o.metrics.SetPendingTasks(float64(pending))
		}
	}

	if o.shared != nil {
		if err := o.shared.SetJSON(ctx, cache.StatsKey(days), stats, statsCacheTTL); err != nil {
			o.logger.Warn("failed to cache moderation stats", zap.Error(err))
		}
	}
	return stats, nil
}

// publish 发布决定事件；sink 缺失或非终态不发布
func (o *Orchestrator) publish(content types.Content, decision *types.Decision) {
	if o.sink == nil {
		return
	}
	event := Event{
		ContentID:   content.ContentID,
		ContentKind: content.ContentKind,
		Modality:    content.Modality,
		Status:      decision.Status,
		At:          time.Now(),
	}
	if decision.Result != nil {
		event.Flags = decision.Result.Flags
	}
	o.sink.Publish(event)
}

// publishTask 发布异步任务终态事件
func (o *Orchestrator) publishTask(ctx context.Context, taskID string, decision *types.Decision) {
	if o.sink == nil || taskID == "" {
		return
	}
	task, err := o.store.GetTask(ctx, taskID)
	if err != nil {
		return
	}
	o.publish(types.Content{
		Modality:    types.ModalityVideo,
		MediaURL:    task.MediaURL,
		ContentID:   task.ContentID,
		ContentKind: types.KindVideoResponse,
		UserID:      task.UserID,
	}, decision)
}
