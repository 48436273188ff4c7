package moderation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/internal/metrics"
	"github.com/BaSui01/modflow/internal/store"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 📝 文本审核
// =============================================================================

// minTextRunes 低于此长度（去首尾空白后按 rune 计）的文本直接零成本放行
const minTextRunes = 3

// skipModelVersion 零成本放行的模型版本标记
const skipModelVersion = "skip-short-text"

// fallbackModelVersion 服务商故障放行时的模型版本标记，
// 让审计日志能区分真实批准与降级放行。
const fallbackModelVersion = "error-fallback"

// TextModerator 同步文本审核器
type TextModerator struct {
	provider classify.Provider
	store    Store
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewTextModerator 创建文本审核器
func NewTextModerator(provider classify.Provider, s Store, collector *metrics.Collector, logger *zap.Logger) *TextModerator {
	return &TextModerator{
		provider: provider,
		store:    s,
		metrics:  collector,
		logger:   logger.With(zap.String("component", "text_moderator")),
	}
}

// Moderate 同步审核单条文本。
// 服务商故障按策略放行或拒绝，绝不把错误抛给调用方。
func (m *TextModerator) Moderate(ctx context.Context, content types.Content, policy types.Policy) *types.Decision {
	start := time.Now()

	trimmed := strings.TrimSpace(content.Text)
	if len([]rune(trimmed)) < minTextRunes {
		result := types.NewResult(nil, nil, 0, skipModelVersion)
		decision := approvedDecision(result)
		m.finish(ctx, content, decision)
		return decision
	}

	raw, err := m.provider.ClassifyText(ctx, trimmed)
	if err != nil {
		decision := failureDecision(types.ModalityText, policy, time.Since(start))
		m.logger.Warn("text classification failed",
			zap.String("content_id", content.ContentID),
			zap.Bool("fail_closed", policy.FailClosed()),
			zap.Error(err),
		)
		if m.metrics != nil {
			m.metrics.RecordProviderError(string(types.GetErrorCode(err)))
			if !policy.FailClosed() {
				m.metrics.RecordFailOpen(string(types.ModalityText))
			}
		}
		m.finish(ctx, content, decision)
		return decision
	}

	result := classify.BuildResult(raw, policy.Thresholds, time.Since(start).Milliseconds())
	decision := syncDecision(types.ModalityText, result)
	m.finish(ctx, content, decision)
	return decision
}

// finish 记录审计日志、回写内容可见性并上报指标
func (m *TextModerator) finish(ctx context.Context, content types.Content, decision *types.Decision) {
	recordDecision(ctx, m.store, m.metrics, m.logger, content, decision)
}

// =============================================================================
// 🧰 同步路径共享逻辑
// =============================================================================

// approvedDecision 构造批准决定
func approvedDecision(result *types.Result) *types.Decision {
	return &types.Decision{
		Status:      types.StatusApproved,
		Result:      result,
		ShouldBlock: false,
	}
}

// syncDecision 由审核结果构造同步决定；ShouldBlock 恒等于 !Approved。
func syncDecision(modality types.Modality, result *types.Result) *types.Decision {
	if result.Approved {
		return approvedDecision(result)
	}
	return &types.Decision{
		Status:      types.StatusRejected,
		Result:      result,
		ShouldBlock: true,
		Message:     rejectionMessage(modality, result),
	}
}

// failureDecision 服务商故障时的决定。
// 默认放行（宁可漏过，不挡住正常用户）；策略要求 fail-closed 时
// 合成一个低严重度标记以保持 ShouldBlock == !Approved 不变式。
func failureDecision(modality types.Modality, policy types.Policy, elapsed time.Duration) *types.Decision {
	ms := elapsed.Milliseconds()
	if !policy.FailClosed() {
		return approvedDecision(types.NewResult(nil, nil, ms, fallbackModelVersion))
	}
	flags := []types.Flag{{
		Category:    types.CategorySpam,
		Severity:    types.SeverityLow,
		Score:       0,
		Description: "classification unavailable and policy rejects unverified content",
	}}
	result := types.NewResult(flags, nil, ms, fallbackModelVersion)
	return &types.Decision{
		Status:      types.StatusRejected,
		Result:      result,
		ShouldBlock: true,
		Message:     genericRejectMessage,
	}
}

// recordDecision 同步路径决定的统一落库与指标上报。
// 审计日志和可见性回写失败只告警，不影响已做出的决定。
func recordDecision(ctx context.Context, s Store, collector *metrics.Collector, logger *zap.Logger, content types.Content, decision *types.Decision) {
	entry := logEntry(content, decision)
	if err := s.CreateLog(ctx, entry); err != nil {
		logger.Warn("failed to persist moderation log",
			zap.String("content_id", content.ContentID),
			zap.Error(err),
		)
	}

	if content.ContentID != "" {
		visible := decision.Status == types.StatusApproved
		if err := s.SetContentVisibility(ctx, content.ContentID, decision.Status, visible); err != nil {
			logger.Warn("failed to update content visibility",
				zap.String("content_id", content.ContentID),
				zap.Error(err),
			)
		}
	}

	if collector != nil {
		var elapsed time.Duration
		if decision.Result != nil {
			elapsed = time.Duration(decision.Result.ProcessingTimeMS) * time.Millisecond
			for _, f := range decision.Result.Flags {
				collector.RecordFlag(string(f.Category), string(f.Severity))
			}
		}
		collector.RecordModeration(string(content.Modality), string(decision.Status), elapsed)
	}
}

// logEntry 由内容与决定构造审计日志行
func logEntry(content types.Content, decision *types.Decision) *store.ModerationLog {
	entry := &store.ModerationLog{
		ContentID:   content.ContentID,
		ContentKind: string(content.ContentKind),
		Status:      string(decision.Status),
		UserID:      content.UserID,
		MediaURL:    content.MediaURL,
	}
	if decision.Result != nil {
		entry.Flags = store.FlagList(decision.Result.Flags)
		entry.RawScores = store.ScoreMap(decision.Result.RawScores)
		entry.ProcessingTimeMS = decision.Result.ProcessingTimeMS
		entry.ModelVersion = decision.Result.ModelVersion
	}
	return entry
}
