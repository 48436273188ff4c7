package moderation

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/internal/metrics"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🎙️ 音频审核
// =============================================================================

// maxAudioDurationSeconds 音频时长上限（10 分钟）
const maxAudioDurationSeconds = 600

// maxAudioFileBytes 音频文件大小上限（50MB）
const maxAudioFileBytes = 50 * 1024 * 1024

// validationFormatVersion 格式校验拒绝的模型版本标记
const validationFormatVersion = "validation:format"

// validationDurationVersion 时长校验拒绝的模型版本标记
const validationDurationVersion = "validation:duration"

// supportedAudioExtensions 支持的音频扩展名
func supportedAudioExtensions() []string {
	return []string{"mp3", "wav", "m4a", "ogg", "webm", "aac"}
}

// AudioModerator 同步音频审核器。
// 本地校验（格式、时长）先行，不通过则不产生任何服务商调用。
type AudioModerator struct {
	provider classify.Provider
	store    Store
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewAudioModerator 创建音频审核器
func NewAudioModerator(provider classify.Provider, s Store, collector *metrics.Collector, logger *zap.Logger) *AudioModerator {
	return &AudioModerator{
		provider: provider,
		store:    s,
		metrics:  collector,
		logger:   logger.With(zap.String("component", "audio_moderator")),
	}
}

// Moderate 同步审核单条音频。
// 校验失败与内容违规共用 Decision 形态，调用方无需区分处理。
func (m *AudioModerator) Moderate(ctx context.Context, content types.Content, policy types.Policy) *types.Decision {
	start := time.Now()

	if !extensionSupported(content.MediaURL, supportedAudioExtensions()) {
		decision := validationReject(audioFormatMessage(), validationFormatVersion)
		m.finish(ctx, content, decision)
		return decision
	}
	if content.DurationSeconds > maxAudioDurationSeconds {
		decision := validationReject(audioDurationMessage(), validationDurationVersion)
		m.finish(ctx, content, decision)
		return decision
	}

	raw, err := m.provider.ClassifyMedia(ctx, content.MediaURL)
	if err != nil {
		decision := failureDecision(types.ModalityAudio, policy, time.Since(start))
		m.logger.Warn("audio classification failed",
			zap.String("content_id", content.ContentID),
			zap.Bool("fail_closed", policy.FailClosed()),
			zap.Error(err),
		)
		if m.metrics != nil {
			m.metrics.RecordProviderError(string(types.GetErrorCode(err)))
			if !policy.FailClosed() {
				m.metrics.RecordFailOpen(string(types.ModalityAudio))
			}
		}
		m.finish(ctx, content, decision)
		return decision
	}

	result := classify.BuildResult(raw, policy.Thresholds, time.Since(start).Milliseconds())
	decision := syncDecision(types.ModalityAudio, result)
	decision.Transcription = raw.Transcription
	m.finish(ctx, content, decision)
	return decision
}

// ValidateAudioFile 上传前的本地文件预检（扩展名与大小）。
// 供上传端在产生存储成本前提前失败。
func (m *AudioModerator) ValidateAudioFile(filename string, sizeBytes int64) error {
	if !extensionSupported(filename, supportedAudioExtensions()) {
		return types.NewError(types.ErrValidation, audioFormatMessage())
	}
	if sizeBytes > maxAudioFileBytes {
		return types.NewError(types.ErrValidation, "audio file exceeds the 50MB size limit")
	}
	return nil
}

func (m *AudioModerator) finish(ctx context.Context, content types.Content, decision *types.Decision) {
	recordDecision(ctx, m.store, m.metrics, m.logger, content, decision)
}

// =============================================================================
// 🧪 校验辅助
// =============================================================================

// validationReject 本地校验失败的拒绝决定。
// 合成一个低严重度标记维持 ShouldBlock == !Approved 不变式；
// modelVersion 标记校验来源，审计时与分类器结果区分。
func validationReject(message, modelVersion string) *types.Decision {
	flags := []types.Flag{{
		Category:    types.CategorySpam,
		Severity:    types.SeverityLow,
		Score:       0,
		Description: "rejected by local validation before classification",
	}}
	result := types.NewResult(flags, nil, 0, modelVersion)
	return &types.Decision{
		Status:      types.StatusRejected,
		Result:      result,
		ShouldBlock: true,
		Message:     message,
	}
}

// extensionSupported 检查 URL 或文件名的扩展名是否在支持表中。
// 扩展名比较不区分大小写，查询串部分被忽略。
func extensionSupported(rawURL string, supported []string) bool {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		return false
	}
	for _, s := range supported {
		if ext == s {
			return true
		}
	}
	return false
}
