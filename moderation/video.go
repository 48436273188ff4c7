package moderation

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/internal/metrics"
	"github.com/BaSui01/modflow/internal/store"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🎬 视频审核（异步）
// =============================================================================

// maxVideoDurationSeconds 视频时长上限（3 分钟）
const maxVideoDurationSeconds = 180

// supportedVideoExtensions 支持的视频扩展名
func supportedVideoExtensions() []string {
	return []string{"mp4", "mov", "webm", "avi", "m4v"}
}

// VideoModerator 异步视频审核器。
// Submit 只负责登记任务；终态由回调或轮询触发，恰好生效一次。
type VideoModerator struct {
	provider   classify.Provider
	store      Store
	archiver   Archiver
	metrics    *metrics.Collector
	logger     *zap.Logger
	webhookURL string
}

// NewVideoModerator 创建视频审核器；archiver 可为 nil。
func NewVideoModerator(provider classify.Provider, s Store, archiver Archiver, collector *metrics.Collector, webhookURL string, logger *zap.Logger) *VideoModerator {
	return &VideoModerator{
		provider:   provider,
		store:      s,
		archiver:   archiver,
		metrics:    collector,
		logger:     logger.With(zap.String("component", "video_moderator")),
		webhookURL: webhookURL,
	}
}

// Submit 提交视频进入异步审核。
// 本地校验失败立即拒绝；提交成功返回 pending 决定，内容保持隐藏。
// 提交通道故障时同样返回 pending（降级提示语），留给轮询兜底。
func (m *VideoModerator) Submit(ctx context.Context, content types.Content, policy types.Policy) *types.Decision {
	if !extensionSupported(content.MediaURL, supportedVideoExtensions()) {
		decision := validationReject(videoFormatMessage(), validationFormatVersion)
		recordDecision(ctx, m.store, m.metrics, m.logger, content, decision)
		return decision
	}
	if content.DurationSeconds > maxVideoDurationSeconds {
		decision := validationReject(videoDurationMessage(), validationDurationVersion)
		recordDecision(ctx, m.store, m.metrics, m.logger, content, decision)
		return decision
	}

	taskID, err := m.provider.SubmitVideo(ctx, content.MediaURL, m.webhookURL)
	if err != nil {
		m.logger.Warn("video submission failed",
			zap.String("content_id", content.ContentID),
			zap.Error(err),
		)
		if m.metrics != nil {
			m.metrics.RecordProviderError(string(types.GetErrorCode(err)))
		}
		// 提交失败不是终态：内容保持隐藏等待重试，
		// 用户收到安抚提示而非服务商错误。
		return &types.Decision{
			Status:      types.StatusPending,
			ShouldBlock: false,
			Message:     degradedVideoMessage,
		}
	}

	task := &store.ModerationTask{
		TaskID:    taskID,
		ContentID: content.ContentID,
		MediaURL:  content.MediaURL,
		UserID:    content.UserID,
		Status:    string(types.TaskPending),
	}
	if err := m.store.CreateTask(ctx, task); err != nil {
		// 任务行是回调落点，写失败必须让调用方知道审核在降级
		m.logger.Error("failed to persist moderation task",
			zap.String("task_id", taskID),
			zap.String("content_id", content.ContentID),
			zap.Error(err),
		)
		return &types.Decision{
			Status:      types.StatusPending,
			ShouldBlock: false,
			TaskID:      taskID,
			Message:     degradedVideoMessage,
		}
	}

	if m.metrics != nil {
		m.metrics.RecordTaskSubmitted()
	}
	m.logger.Info("video moderation task submitted",
		zap.String("task_id", taskID),
		zap.String("content_id", content.ContentID),
	)
	return &types.Decision{
		Status:      types.StatusPending,
		ShouldBlock: false,
		TaskID:      taskID,
		Message:     pendingVideoMessage,
	}
}

// CheckTask 轮询任务状态；终态时完成任务并返回最终决定。
// 已终态的任务直接由持久化结果重建决定，不再触碰服务商。
func (m *VideoModerator) CheckTask(ctx context.Context, taskID string, policy types.Policy) (*types.Decision, error) {
	task, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if types.TaskStatus(task.Status).Terminal() {
		return taskDecision(task), nil
	}

	raw, err := m.provider.PollTask(ctx, taskID)
	if err != nil {
		if types.GetErrorCode(err) == types.ErrUpstreamError {
			// 服务商报任务失败：按策略放行或拒绝收尾
			decision, _, cerr := m.completeTask(ctx, task, failureDecision(types.ModalityVideo, policy, 0).Result, types.TaskFailed, "poll")
			return decision, cerr
		}
		m.logger.Warn("video task poll failed",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return &types.Decision{
			Status:      types.StatusProcessing,
			ShouldBlock: false,
			TaskID:      taskID,
			Message:     pendingVideoMessage,
		}, nil
	}
	if raw == nil {
		return &types.Decision{
			Status:      types.StatusProcessing,
			ShouldBlock: false,
			TaskID:      taskID,
			Message:     pendingVideoMessage,
		}, nil
	}

	result := classify.BuildResult(raw, policy.Thresholds, 0)
	decision, _, err := m.completeTask(ctx, task, result, types.TaskCompleted, "poll")
	return decision, err
}

// webhookPayload 服务商回调负载（宽松解析，未知字段忽略）
type webhookPayload struct {
	TaskID string `json:"task_id"`
	ID     string `json:"id"`
	Status string `json:"status"`
	Output []struct {
		Classes []struct {
			Class string  `json:"class"`
			Score float64 `json:"score"`
		} `json:"classes"`
	} `json:"output"`
	Transcription string `json:"transcription"`
}

// ProcessWebhook 处理服务商回调。
// 原始负载无条件归档；解析失败时任务保持 pending 交给轮询兜底，
// 并返回校验错误（HTTP 层仍应答 200，避免服务商无谓重试）。
func (m *VideoModerator) ProcessWebhook(ctx context.Context, body []byte, policy types.Policy) (*types.Decision, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		if m.archiver != nil {
			m.archiver.Append(ctx, "", body)
		}
		if m.metrics != nil {
			m.metrics.RecordWebhook("unparseable")
		}
		m.logger.Warn("unparseable webhook payload", zap.Error(err))
		return nil, types.NewError(types.ErrValidation, "unparseable webhook payload").WithCause(err)
	}

	taskID := payload.TaskID
	if taskID == "" {
		taskID = payload.ID
	}
	if m.archiver != nil {
		m.archiver.Append(ctx, taskID, body)
	}
	if taskID == "" {
		if m.metrics != nil {
			m.metrics.RecordWebhook("missing_task_id")
		}
		return nil, types.NewError(types.ErrValidation, "webhook payload has no task id")
	}

	task, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		if m.metrics != nil {
			m.metrics.RecordWebhook("unknown_task")
		}
		return nil, err
	}
	if types.TaskStatus(task.Status).Terminal() {
		if m.metrics != nil {
			m.metrics.RecordWebhook("duplicate")
		}
		return taskDecision(task), nil
	}

	var result *types.Result
	status := types.TaskCompleted
	if payload.Status == "failed" {
		result = failureDecision(types.ModalityVideo, policy, 0).Result
		status = types.TaskFailed
	} else {
		frames := make([]map[string]float64, 0, len(payload.Output))
		for _, out := range payload.Output {
			frame := map[string]float64{}
			for _, c := range out.Classes {
				frame[c.Class] = c.Score
			}
			frames = append(frames, frame)
		}
		raw := &classify.RawOutcome{
			Scores:        classify.ReduceFrames(frames),
			Transcription: payload.Transcription,
			Model:         m.provider.Name(),
		}
		result = classify.BuildResult(raw, policy.Thresholds, 0)
	}

	decision, won, err := m.completeTask(ctx, task, result, status, "webhook")
	if err != nil {
		return nil, err
	}
	if m.metrics != nil {
		// 与轮询竞争落败的回调按重复计量
		if won {
			m.metrics.RecordWebhook("completed")
		} else {
			m.metrics.RecordWebhook("duplicate")
		}
	}
	return decision, nil
}

// completeTask 任务终态迁移，恰好生效一次。
// 条件更新先行：回调与轮询竞争时输家看到零行受影响，
// 直接返回已持久化的决定（won=false），日志与可见性副作用不会重复。
func (m *VideoModerator) completeTask(ctx context.Context, task *store.ModerationTask, result *types.Result, status types.TaskStatus, via string) (*types.Decision, bool, error) {
	won, err := m.store.CompleteTask(ctx, task.TaskID, status, result)
	if err != nil {
		return nil, false, err
	}
	if !won {
		fresh, err := m.store.GetTask(ctx, task.TaskID)
		if err != nil {
			return nil, false, err
		}
		return taskDecision(fresh), false, nil
	}

	decision := syncDecision(types.ModalityVideo, result)
	decision.TaskID = task.TaskID
	content := types.Content{
		Modality:    types.ModalityVideo,
		MediaURL:    task.MediaURL,
		ContentID:   task.ContentID,
		ContentKind: types.KindVideoResponse,
		UserID:      task.UserID,
	}
	recordDecision(ctx, m.store, m.metrics, m.logger, content, decision)

	if m.metrics != nil {
		m.metrics.RecordTaskCompleted(string(status), via)
	}
	m.logger.Info("video moderation task completed",
		zap.String("task_id", task.TaskID),
		zap.String("content_id", task.ContentID),
		zap.String("status", string(decision.Status)),
		zap.String("via", via),
	)
	return decision, true, nil
}

// taskDecision 由已终态的任务行重建决定
func taskDecision(task *store.ModerationTask) *types.Decision {
	if !types.TaskStatus(task.Status).Terminal() {
		return &types.Decision{
			Status:      types.StatusProcessing,
			ShouldBlock: false,
			TaskID:      task.TaskID,
			Message:     pendingVideoMessage,
		}
	}
	if task.Result == nil {
		return &types.Decision{
			Status:      types.StatusFailed,
			ShouldBlock: true,
			TaskID:      task.TaskID,
			Message:     degradedVideoMessage,
		}
	}
	result := types.Result(*task.Result)
	decision := syncDecision(types.ModalityVideo, &result)
	decision.TaskID = task.TaskID
	return decision
}
