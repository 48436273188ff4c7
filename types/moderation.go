package types

// =============================================================================
// 🏷️ 分类与严重度
// =============================================================================

// Category 违规分类（固定 8 值）
type Category string

const (
	CategoryHateSpeech      Category = "hate_speech"
	CategoryHarassment      Category = "harassment"
	CategoryViolence        Category = "violence"
	CategorySelfHarm        Category = "self_harm"
	CategorySexualContent   Category = "sexual_content"
	CategorySpam            Category = "spam"
	CategoryProfanity       Category = "profanity"
	CategoryIllegalActivity Category = "illegal_activity"
)

// AllCategories 返回全部分类（固定顺序，用于遍历与统计）
func AllCategories() []Category {
	return []Category{
		CategoryHateSpeech,
		CategoryHarassment,
		CategoryViolence,
		CategorySelfHarm,
		CategorySexualContent,
		CategorySpam,
		CategoryProfanity,
		CategoryIllegalActivity,
	}
}

// Valid 检查分类是否属于固定分类表
func (c Category) Valid() bool {
	switch c {
	case CategoryHateSpeech, CategoryHarassment, CategoryViolence,
		CategorySelfHarm, CategorySexualContent, CategorySpam,
		CategoryProfanity, CategoryIllegalActivity:
		return true
	}
	return false
}

// Severity 严重度（由分数确定性推导）
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityForScore 将 [0,1] 分数映射到严重度。
// 纯全函数：critical ≥0.9、high ≥0.75、medium ≥0.5、否则 low。
func SeverityForScore(score float64) Severity {
	switch {
	case score >= 0.9:
		return SeverityCritical
	case score >= 0.75:
		return SeverityHigh
	case score >= 0.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// =============================================================================
// 📦 审核输入
// =============================================================================

// Modality 内容模态
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
	ModalityVideo Modality = "video"
)

// ContentKind 业务内容种类
type ContentKind string

const (
	KindPrayer        ContentKind = "prayer"
	KindResponse      ContentKind = "response"
	KindChat          ContentKind = "chat"
	KindProfile       ContentKind = "profile"
	KindAudioPrayer   ContentKind = "audio_prayer"
	KindAudioResponse ContentKind = "audio_response"
	KindVideoResponse ContentKind = "video_response"
)

// Content 待审核内容（按 Modality 区分的联合类型，创建后不可变）。
// Text 仅在 ModalityText 下有效；MediaURL 在 audio/video 下有效。
type Content struct {
	Modality        Modality    `json:"modality"`
	Text            string      `json:"text,omitempty"`
	MediaURL        string      `json:"media_url,omitempty"`
	ContentID       string      `json:"content_id"`
	ContentKind     ContentKind `json:"content_kind"`
	UserID          string      `json:"user_id,omitempty"`
	DurationSeconds float64     `json:"duration_seconds,omitempty"`
}

// =============================================================================
// 🚩 审核结果
// =============================================================================

// Flag 越过阈值的分类标记。
// 只有分数达到该分类配置阈值时才会生成 Flag。
type Flag struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Score       float64  `json:"score"`
	Description string   `json:"description"`
}

// Result 单次审核结果。
// Approved 恒等于 len(Flags)==0，由 NewResult 强制。
type Result struct {
	Approved         bool               `json:"approved"`
	Flags            []Flag             `json:"flags"`
	RawScores        map[string]float64 `json:"raw_scores"`
	ProcessingTimeMS int64              `json:"processing_time_ms"`
	ModelVersion     string             `json:"model_version"`
}

// NewResult 构造审核结果，Approved 由 Flags 推导。
func NewResult(flags []Flag, rawScores map[string]float64, processingTimeMS int64, modelVersion string) *Result {
	if rawScores == nil {
		rawScores = map[string]float64{}
	}
	return &Result{
		Approved:         len(flags) == 0,
		Flags:            flags,
		RawScores:        rawScores,
		ProcessingTimeMS: processingTimeMS,
		ModelVersion:     modelVersion,
	}
}

// TopFlag 返回分数最高的标记；无标记时返回 nil。
// 用于挑选面向用户的提示语。
func (r *Result) TopFlag() *Flag {
	if len(r.Flags) == 0 {
		return nil
	}
	top := 0
	for i := 1; i < len(r.Flags); i++ {
		if r.Flags[i].Score > r.Flags[top].Score {
			top = i
		}
	}
	return &r.Flags[top]
}

// =============================================================================
// ⚖️ 审核决定
// =============================================================================

// Status 审核决定状态
type Status string

const (
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
)

// Decision 返回给调用方的最终决定。
// "尚未批准"（pending）与"已拒绝"（rejected）是两个不同状态：
// 视频提交成功后内容保持隐藏等待异步结果，但不算被拒。
type Decision struct {
	Status        Status  `json:"status"`
	Result        *Result `json:"result,omitempty"`
	ShouldBlock   bool    `json:"should_block"`
	Message       string  `json:"message,omitempty"`
	Transcription string  `json:"transcription,omitempty"`
	TaskID        string  `json:"task_id,omitempty"`
}

// =============================================================================
// 🎬 异步任务
// =============================================================================

// TaskStatus 视频审核任务状态。
// pending → completed|failed 的终态迁移只发生一次。
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal 判断任务状态是否为终态
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}
