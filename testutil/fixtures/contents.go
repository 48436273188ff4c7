// Package fixtures 提供常用的审核输入与服务商输出样例。
package fixtures

import (
	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 📥 审核输入样例
// =============================================================================

// TextContent 返回一条文本审核输入
func TextContent(id, text string) types.Content {
	return types.Content{
		Modality:    types.ModalityText,
		Text:        text,
		ContentID:   id,
		ContentKind: types.KindPrayer,
		UserID:      "user-1",
	}
}

// AudioContent 返回一条音频审核输入
func AudioContent(id, mediaURL string, duration float64) types.Content {
	return types.Content{
		Modality:        types.ModalityAudio,
		MediaURL:        mediaURL,
		ContentID:       id,
		ContentKind:     types.KindAudioPrayer,
		UserID:          "user-1",
		DurationSeconds: duration,
	}
}

// VideoContent 返回一条视频审核输入
func VideoContent(id, mediaURL string, duration float64) types.Content {
	return types.Content{
		Modality:        types.ModalityVideo,
		MediaURL:        mediaURL,
		ContentID:       id,
		ContentKind:     types.KindVideoResponse,
		UserID:          "user-1",
		DurationSeconds: duration,
	}
}

// =============================================================================
// 📤 服务商输出样例
// =============================================================================

// CleanOutcome 返回全零分的无害输出
func CleanOutcome() *classify.RawOutcome {
	return &classify.RawOutcome{
		Scores: map[string]float64{},
		Model:  "mock",
	}
}

// ScoredOutcome 返回指定分数的输出
func ScoredOutcome(scores map[string]float64) *classify.RawOutcome {
	return &classify.RawOutcome{
		Scores: scores,
		Model:  "mock",
	}
}

// TranscribedOutcome 返回带转写文本的输出
func TranscribedOutcome(transcription string, scores map[string]float64) *classify.RawOutcome {
	return &classify.RawOutcome{
		Scores:        scores,
		Transcription: transcription,
		Model:         "mock",
	}
}
