// Provider 的分类服务商测试模拟实现。
//
// 支持可编程响应、错误注入与调用计数。
package mocks

import (
	"context"
	"sync/atomic"

	"github.com/BaSui01/modflow/classify"
)

// Provider 可编程的分类服务商。
// 未设置的回调返回无害默认值：空分数、任务 ID "task-1"、轮询未完成。
type Provider struct {
	TextFn   func(text string) (*classify.RawOutcome, error)
	MediaFn  func(mediaURL string) (*classify.RawOutcome, error)
	SubmitFn func(videoURL, webhookURL string) (string, error)
	PollFn   func(taskID string) (*classify.RawOutcome, error)

	textCalls   atomic.Int64
	mediaCalls  atomic.Int64
	submitCalls atomic.Int64
	pollCalls   atomic.Int64
}

var _ classify.Provider = (*Provider)(nil)

func (p *Provider) Name() string { return "mock" }

func (p *Provider) ClassifyText(_ context.Context, text string) (*classify.RawOutcome, error) {
	p.textCalls.Add(1)
	if p.TextFn != nil {
		return p.TextFn(text)
	}
	return &classify.RawOutcome{Scores: map[string]float64{}, Model: "mock"}, nil
}

func (p *Provider) ClassifyMedia(_ context.Context, mediaURL string) (*classify.RawOutcome, error) {
	p.mediaCalls.Add(1)
	if p.MediaFn != nil {
		return p.MediaFn(mediaURL)
	}
	return &classify.RawOutcome{Scores: map[string]float64{}, Model: "mock"}, nil
}

func (p *Provider) SubmitVideo(_ context.Context, videoURL, webhookURL string) (string, error) {
	p.submitCalls.Add(1)
	if p.SubmitFn != nil {
		return p.SubmitFn(videoURL, webhookURL)
	}
	return "task-1", nil
}

func (p *Provider) PollTask(_ context.Context, taskID string) (*classify.RawOutcome, error) {
	p.pollCalls.Add(1)
	if p.PollFn != nil {
		return p.PollFn(taskID)
	}
	return nil, nil
}

// TextCalls 返回 ClassifyText 的调用次数
func (p *Provider) TextCalls() int64 { return p.textCalls.Load() }

// MediaCalls 返回 ClassifyMedia 的调用次数
func (p *Provider) MediaCalls() int64 { return p.mediaCalls.Load() }

// SubmitCalls 返回 SubmitVideo 的调用次数
func (p *Provider) SubmitCalls() int64 { return p.submitCalls.Load() }

// PollCalls 返回 PollTask 的调用次数
func (p *Provider) PollCalls() int64 { return p.pollCalls.Load() }
