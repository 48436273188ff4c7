package classify

import (
	"context"
	"time"
)

// Provider defines the interface for an external classification service.
type Provider interface {
	Name() string

	// ClassifyText 同步审核文本，返回服务商原生分类分数。
	ClassifyText(ctx context.Context, text string) (*RawOutcome, error)

	// ClassifyMedia 同步审核媒体 URL（音频），分数之外尽力返回转写文本。
	ClassifyMedia(ctx context.Context, mediaURL string) (*RawOutcome, error)

	// SubmitVideo 提交视频异步审核，返回服务商签发的任务 ID。
	// webhookURL 可选；为空时只能通过 PollTask 取结果。
	SubmitVideo(ctx context.Context, videoURL, webhookURL string) (string, error)

	// PollTask 轮询异步任务。(nil, nil) 表示仍在处理中。
	PollTask(ctx context.Context, taskID string) (*RawOutcome, error)
}

// RawOutcome 服务商归一化输出。
// Scores 键为服务商原生分类名；多帧媒体已按每类最大分归并。
type RawOutcome struct {
	Scores        map[string]float64 `json:"scores"`
	Transcription string             `json:"transcription,omitempty"`
	Model         string             `json:"model"`
}

// Config configures the classification provider adapter.
type Config struct {
	APIKey     string        `json:"api_key" yaml:"api_key"`
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	Model      string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	WebhookURL string        `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`

	// 客户端限流（每秒请求数，0 表示不限）
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
}

// DefaultConfig returns default classifier config.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.thehive.ai",
		Model:             "moderation-latest",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
	}
}
