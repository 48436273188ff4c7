package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaSui01/modflow/types"
)

// HiveProvider 使用 Hive 审核 API 执行内容分类。
// API 文档: https://docs.thehive.ai/
type HiveProvider struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// NewHiveProvider 创建新的 Hive 分类提供商。
func NewHiveProvider(cfg Config) *HiveProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.thehive.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "moderation-latest"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}

	return &HiveProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (p *HiveProvider) Name() string { return "hive" }

// =============================================================================
// 📡 线格式
// =============================================================================

type hiveSyncRequest struct {
	Model    string `json:"model,omitempty"`
	TextData string `json:"text_data,omitempty"`
	URL      string `json:"url,omitempty"`
}

type hiveAsyncRequest struct {
	Model       string `json:"model,omitempty"`
	URL         string `json:"url"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type hiveClass struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
}

type hiveFrame struct {
	Time    float64     `json:"time,omitempty"`
	Classes []hiveClass `json:"classes"`
}

type hiveTaskResponse struct {
	ID            string      `json:"id"`
	TaskID        string      `json:"task_id,omitempty"`
	Status        string      `json:"status"` // queued, in_progress, completed, failed
	Model         string      `json:"model,omitempty"`
	Output        []hiveFrame `json:"output,omitempty"`
	Transcription string      `json:"transcription,omitempty"`
	Message       string      `json:"message,omitempty"`
}

// =============================================================================
// 🔍 同步分类
// =============================================================================

// ClassifyText 同步审核文本。
func (p *HiveProvider) ClassifyText(ctx context.Context, text string) (*RawOutcome, error) {
	body := hiveSyncRequest{Model: p.cfg.Model, TextData: text}
	resp, err := p.doJSON(ctx, http.MethodPost, "/api/v2/task/sync", body)
	if err != nil {
		return nil, err
	}
	return p.toOutcome(resp), nil
}

// ClassifyMedia 同步审核媒体 URL（音频）。
func (p *HiveProvider) ClassifyMedia(ctx context.Context, mediaURL string) (*RawOutcome, error) {
	body := hiveSyncRequest{Model: p.cfg.Model, URL: mediaURL}
	resp, err := p.doJSON(ctx, http.MethodPost, "/api/v2/task/sync", body)
	if err != nil {
		return nil, err
	}
	return p.toOutcome(resp), nil
}

// =============================================================================
// 🎬 异步视频
// =============================================================================

// SubmitVideo 提交视频异步审核，返回服务商任务 ID。
func (p *HiveProvider) SubmitVideo(ctx context.Context, videoURL, webhookURL string) (string, error) {
	body := hiveAsyncRequest{Model: p.cfg.Model, URL: videoURL, CallbackURL: webhookURL}
	resp, err := p.doJSON(ctx, http.MethodPost, "/api/v2/task/async", body)
	if err != nil {
		return "", err
	}

	taskID := resp.TaskID
	if taskID == "" {
		taskID = resp.ID
	}
	if taskID == "" {
		return "", types.NewError(types.ErrUpstreamError, "provider returned no task id").
			WithProvider(p.Name())
	}
	return taskID, nil
}

// PollTask 轮询异步任务。(nil, nil) 表示仍在处理中。
func (p *HiveProvider) PollTask(ctx context.Context, taskID string) (*RawOutcome, error) {
	resp, err := p.doJSON(ctx, http.MethodGet, "/api/v2/task/"+taskID+"/status", nil)
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case "queued", "in_progress":
		return nil, nil
	case "failed":
		msg := resp.Message
		if msg == "" {
			msg = "provider task failed"
		}
		return nil, types.NewError(types.ErrUpstreamError, msg).WithProvider(p.Name())
	}

	return p.toOutcome(resp), nil
}

// =============================================================================
// 🔧 内部辅助
// =============================================================================

func (p *HiveProvider) doJSON(ctx context.Context, method, path string, body any) (*hiveTaskResponse, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, types.NewError(types.ErrUpstreamTimeout, "rate limiter wait cancelled").
				WithProvider(p.Name()).WithCause(err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to create request").WithCause(err)
	}
	httpReq.Header.Set("Authorization", "Token "+p.cfg.APIKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, types.NewError(types.ErrUpstreamTimeout, "classification request timed out").
				WithProvider(p.Name()).WithRetryable(true).WithCause(err)
		}
		return nil, types.NewError(types.ErrProviderUnavailable, "classification request failed").
			WithProvider(p.Name()).WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, types.NewError(types.ErrRateLimited, "provider rate limit exceeded").
			WithProvider(p.Name()).WithRetryable(true).WithHTTPStatus(resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("provider error: status=%d body=%s", resp.StatusCode, string(errBody))).
			WithProvider(p.Name()).WithHTTPStatus(resp.StatusCode)
	}

	var tResp hiveTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&tResp); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to decode provider response").
			WithProvider(p.Name()).WithCause(err)
	}
	return &tResp, nil
}

// toOutcome 将任务响应归一化；多帧输出按每类最大分归并。
func (p *HiveProvider) toOutcome(resp *hiveTaskResponse) *RawOutcome {
	frames := make([]map[string]float64, 0, len(resp.Output))
	for _, f := range resp.Output {
		frame := make(map[string]float64, len(f.Classes))
		for _, c := range f.Classes {
			frame[c.Class] = c.Score
		}
		frames = append(frames, frame)
	}

	model := resp.Model
	if model == "" {
		model = p.cfg.Model
	}

	return &RawOutcome{
		Scores:        ReduceFrames(frames),
		Transcription: resp.Transcription,
		Model:         model,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
