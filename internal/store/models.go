package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🧱 JSON 列类型
// =============================================================================

// ScoreMap 以 JSON 文本存储的原生分类分数表
type ScoreMap map[string]float64

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		m = ScoreMap{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal score map: %w", err)
	}
	return string(data), nil
}

func (m *ScoreMap) Scan(src any) error {
	return scanJSON(src, m, "score map")
}

// FlagList 以 JSON 文本存储的标记列表
type FlagList []types.Flag

func (l FlagList) Value() (driver.Value, error) {
	if l == nil {
		l = FlagList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flag list: %w", err)
	}
	return string(data), nil
}

func (l *FlagList) Scan(src any) error {
	return scanJSON(src, l, "flag list")
}

// ResultJSON 以 JSON 文本存储的完整审核结果（任务终态用，可空）
type ResultJSON types.Result

func (r ResultJSON) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}

func (r *ResultJSON) Scan(src any) error {
	return scanJSON(src, r, "result")
}

// ThresholdMap 以 JSON 文本存储的分类阈值表
type ThresholdMap map[types.Category]float64

func (m ThresholdMap) Value() (driver.Value, error) {
	if m == nil {
		m = ThresholdMap{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal threshold map: %w", err)
	}
	return string(data), nil
}

func (m *ThresholdMap) Scan(src any) error {
	return scanJSON(src, m, "threshold map")
}

func scanJSON(src, dest any, what string) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported %s column type %T", what, src)
	}
}

// =============================================================================
// 🗃️ 表模型
// =============================================================================

// ModerationLog 审核决定的 append-only 审计记录。
// 永不修改或删除；统计与申诉复核的事实来源。
type ModerationLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ContentID        string    `gorm:"size:64;not null;index:idx_logs_content" json:"content_id"`
	ContentKind      string    `gorm:"size:32;not null;index:idx_logs_kind" json:"content_kind"`
	Status           string    `gorm:"size:16;not null;index:idx_logs_status" json:"status"`
	Flags            FlagList  `gorm:"type:text" json:"flags"`
	RawScores        ScoreMap  `gorm:"type:text" json:"raw_scores"`
	ProcessingTimeMS int64     `gorm:"default:0" json:"processing_time_ms"`
	ModelVersion     string    `gorm:"size:64" json:"model_version"`
	UserID           string    `gorm:"size:64;index:idx_logs_user" json:"user_id"`
	MediaURL         string    `gorm:"size:1024" json:"media_url,omitempty"`
	CreatedAt        time.Time `gorm:"index:idx_logs_created" json:"created_at"`
}

func (ModerationLog) TableName() string {
	return "moderation_logs"
}

// ModerationTask 视频异步审核任务。
// pending → completed|failed 恰好一次；轮询与回调谁先到谁生效。
type ModerationTask struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TaskID      string      `gorm:"size:128;not null;uniqueIndex:idx_tasks_task_id" json:"task_id"`
	ContentID   string      `gorm:"size:64;not null;index:idx_tasks_content" json:"content_id"`
	MediaURL    string      `gorm:"size:1024;not null" json:"media_url"`
	UserID      string      `gorm:"size:64" json:"user_id"`
	Status      string      `gorm:"size:16;not null;index:idx_tasks_status" json:"status"`
	Result      *ResultJSON `gorm:"type:text" json:"result,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

func (ModerationTask) TableName() string {
	return "moderation_tasks"
}

// ModerationConfig 单行命名策略配置
type ModerationConfig struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Name       string       `gorm:"size:32;not null;uniqueIndex:idx_config_name" json:"name"`
	// Enabled 用指针建模；bool 零值会被 GORM 按列缺省省略，false 将无法落库
	Enabled    *bool        `gorm:"default:true" json:"enabled"`
	StrictMode bool         `gorm:"default:false" json:"strict_mode"`
	AutoReject bool         `gorm:"default:false" json:"auto_reject"`
	Thresholds ThresholdMap `gorm:"type:text" json:"thresholds"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (ModerationConfig) TableName() string {
	return "moderation_config"
}

// Content 内容仓库行；审核核心只写 {moderation_status, is_visible}。
type Content struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ContentID        string    `gorm:"size:64;not null;uniqueIndex:idx_contents_content_id" json:"content_id"`
	ContentKind      string    `gorm:"size:32;not null" json:"content_kind"`
	ModerationStatus string    `gorm:"size:16;not null;default:pending" json:"moderation_status"`
	IsVisible        bool      `gorm:"default:false" json:"is_visible"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Content) TableName() string {
	return "contents"
}

// ToPolicy 将配置行转换为领域策略
func (c *ModerationConfig) ToPolicy() types.Policy {
	enabled := true
	if c.Enabled != nil {
		enabled = *c.Enabled
	}
	return types.Policy{
		Enabled:    enabled,
		StrictMode: c.StrictMode,
		AutoReject: c.AutoReject,
		Thresholds: map[types.Category]float64(c.Thresholds),
	}
}
