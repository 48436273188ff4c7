package api

import (
	"strings"

	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 📨 审核请求
// =============================================================================

// ModerateRequest 单条内容审核请求
type ModerateRequest struct {
	Modality        string  `json:"modality"`
	Text            string  `json:"text,omitempty"`
	MediaURL        string  `json:"media_url,omitempty"`
	ContentID       string  `json:"content_id"`
	ContentKind     string  `json:"content_kind"`
	UserID          string  `json:"user_id,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Validate 校验请求并返回领域内容对象
func (r *ModerateRequest) Validate() (types.Content, *types.Error) {
	modality := types.Modality(strings.ToLower(strings.TrimSpace(r.Modality)))
	switch modality {
	case types.ModalityText, types.ModalityAudio, types.ModalityVideo:
	default:
		return types.Content{}, types.NewError(types.ErrInvalidRequest, "modality must be one of text, audio, video")
	}

	if r.ContentID == "" {
		return types.Content{}, types.NewError(types.ErrInvalidRequest, "content_id is required")
	}
	if modality != types.ModalityText && r.MediaURL == "" {
		return types.Content{}, types.NewError(types.ErrInvalidRequest, "media_url is required for "+string(modality)+" content")
	}
	if r.DurationSeconds < 0 {
		return types.Content{}, types.NewError(types.ErrInvalidRequest, "duration_seconds must not be negative")
	}

	return types.Content{
		Modality:        modality,
		Text:            r.Text,
		MediaURL:        r.MediaURL,
		ContentID:       r.ContentID,
		ContentKind:     types.ContentKind(r.ContentKind),
		UserID:          r.UserID,
		DurationSeconds: r.DurationSeconds,
	}, nil
}

// BatchModerateRequest 批量审核请求
type BatchModerateRequest struct {
	Items []ModerateRequest `json:"items"`
}

// maxBatchItems 单次批量请求的条目上限
const maxBatchItems = 100

// Validate 校验并转换批量请求；任一条目非法则整批拒绝。
func (r *BatchModerateRequest) Validate() ([]types.Content, *types.Error) {
	if len(r.Items) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "items must not be empty")
	}
	if len(r.Items) > maxBatchItems {
		return nil, types.NewError(types.ErrInvalidRequest, "batch size exceeds limit of 100")
	}

	contents := make([]types.Content, 0, len(r.Items))
	seen := make(map[string]struct{}, len(r.Items))
	for i := range r.Items {
		content, err := r.Items[i].Validate()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[content.ContentID]; dup {
			return nil, types.NewError(types.ErrInvalidRequest, "duplicate content_id in batch: "+content.ContentID)
		}
		seen[content.ContentID] = struct{}{}
		contents = append(contents, content)
	}
	return contents, nil
}

// =============================================================================
// 📬 响应
// =============================================================================

// BatchModerateResponse 批量审核响应；键为 content_id
type BatchModerateResponse struct {
	Decisions map[string]*types.Decision `json:"decisions"`
}

// TaskResponse 异步任务查询响应
type TaskResponse struct {
	TaskID   string          `json:"task_id"`
	Decision *types.Decision `json:"decision"`
}

// ConfigResponse 策略查询响应
type ConfigResponse struct {
	Policy types.Policy `json:"policy"`
}

// ConfigUpdateRequest 策略更新请求（部分字段，缺省保持不变）
type ConfigUpdateRequest struct {
	Patch types.PolicyPatch `json:"patch"`
}

// Validate 校验补丁中的阈值范围与分类名
func (r *ConfigUpdateRequest) Validate() *types.Error {
	for cat, v := range r.Patch.Thresholds {
		if !cat.Valid() {
			return types.NewError(types.ErrInvalidRequest, "unknown category: "+string(cat))
		}
		if v < 0 || v > 1 {
			return types.NewError(types.ErrInvalidRequest, "threshold for "+string(cat)+" must be within [0, 1]")
		}
	}
	return nil
}
