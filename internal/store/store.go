package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🗄️ 审核存储
// =============================================================================

// ErrTaskNotFound 任务不存在；携带错误码供 HTTP 层映射 404
var ErrTaskNotFound = types.NewError(types.ErrTaskNotFound, "moderation task not found")

// Store 审核持久层仓储
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New 创建审核存储
func New(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With(zap.String("component", "store")),
	}
}

// DB 返回底层 GORM 实例（迁移与测试用）
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AutoMigrate 确保四张表结构最新
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&ModerationLog{},
		&ModerationTask{},
		&ModerationConfig{},
		&Content{},
	)
}

// =============================================================================
// 📜 审核日志
// =============================================================================

// CreateLog 追加一条审计记录（含批准，审计必须完整）
func (s *Store) CreateLog(ctx context.Context, entry *ModerationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return types.NewError(types.ErrPersistence, "failed to create moderation log").WithCause(err)
	}
	return nil
}

// ListLogsSince 返回窗口内的审计记录（统计聚合用）
func (s *Store) ListLogsSince(ctx context.Context, since time.Time) ([]ModerationLog, error) {
	var logs []ModerationLog
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, types.NewError(types.ErrPersistence, "failed to list moderation logs").WithCause(err)
	}
	return logs, nil
}

// =============================================================================
// 🎬 异步任务
// =============================================================================

// CreateTask 持久化 pending 任务（提交成功后、返回调用方之前）
func (s *Store) CreateTask(ctx context.Context, task *ModerationTask) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.Status == "" {
		task.Status = string(types.TaskPending)
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return types.NewError(types.ErrPersistence, "failed to create moderation task").WithCause(err)
	}
	return nil
}

// GetTask 按服务商任务 ID 查找
func (s *Store) GetTask(ctx context.Context, taskID string) (*ModerationTask, error) {
	var task ModerationTask
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, types.NewError(types.ErrPersistence, "failed to load moderation task").WithCause(err)
	}
	return &task, nil
}

// CompleteTask 将任务迁移到终态。
// 条件更新（status = pending）保证幂等：已完成任务上的第二次
// 终态写入返回 false，调用方据此跳过日志与可见性副作用。
func (s *Store) CompleteTask(ctx context.Context, taskID string, status types.TaskStatus, result *types.Result) (bool, error) {
	now := time.Now()
	updates := map[string]any{
		"status":       string(status),
		"completed_at": &now,
	}
	if result != nil {
		rj := ResultJSON(*result)
		updates["result"] = &rj
	}

	res := s.db.WithContext(ctx).
		Model(&ModerationTask{}).
		Where("task_id = ? AND status = ?", taskID, string(types.TaskPending)).
		Updates(updates)
	if res.Error != nil {
		return false, types.NewError(types.ErrPersistence, "failed to complete moderation task").WithCause(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountPendingTasks 当前 pending 任务数（指标用）
func (s *Store) CountPendingTasks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&ModerationTask{}).
		Where("status = ?", string(types.TaskPending)).
		Count(&count).Error
	if err != nil {
		return 0, types.NewError(types.ErrPersistence, "failed to count pending tasks").WithCause(err)
	}
	return count, nil
}

// =============================================================================
// 🛂 策略配置
// =============================================================================

// defaultConfigName 单行策略配置的固定名称
const defaultConfigName = "default"

// LoadPolicy 读取策略配置行；不存在时返回 (nil, nil)。
func (s *Store) LoadPolicy(ctx context.Context) (*types.Policy, error) {
	var row ModerationConfig
	err := s.db.WithContext(ctx).Where("name = ?", defaultConfigName).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewError(types.ErrPersistence, "failed to load moderation config").WithCause(err)
	}
	policy := row.ToPolicy()
	return &policy, nil
}

// SavePolicy 写入策略配置（按 name upsert）
func (s *Store) SavePolicy(ctx context.Context, policy types.Policy) error {
	enabled := policy.Enabled
	row := ModerationConfig{
		Name:       defaultConfigName,
		Enabled:    &enabled,
		StrictMode: policy.StrictMode,
		AutoReject: policy.AutoReject,
		Thresholds: ThresholdMap(policy.Thresholds),
		UpdatedAt:  time.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "strict_mode", "auto_reject", "thresholds", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return types.NewError(types.ErrPersistence, "failed to save moderation config").WithCause(err)
	}
	return nil
}

// =============================================================================
// 👁️ 内容可见性
// =============================================================================

// SetContentVisibility 内容仓库的唯一写操作：按 contentID 更新
// {moderation_status, is_visible}。行不存在时补插一行，保证迟到的
// 终态结果不丢。
func (s *Store) SetContentVisibility(ctx context.Context, contentID string, status types.Status, visible bool) error {
	res := s.db.WithContext(ctx).
		Model(&Content{}).
		Where("content_id = ?", contentID).
		Updates(map[string]any{
			"moderation_status": string(status),
			"is_visible":        visible,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return types.NewError(types.ErrPersistence, "failed to update content visibility").WithCause(res.Error)
	}
	if res.RowsAffected == 0 {
		row := Content{
			ContentID:        contentID,
			ContentKind:      string(types.KindVideoResponse),
			ModerationStatus: string(status),
			IsVisible:        visible,
			UpdatedAt:        time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return types.NewError(types.ErrPersistence, "failed to insert content visibility row").WithCause(err)
		}
	}
	return nil
}

// GetContent 读取内容行（测试与申诉复核用）
func (s *Store) GetContent(ctx context.Context, contentID string) (*Content, error) {
	var row Content
	err := s.db.WithContext(ctx).Where("content_id = ?", contentID).First(&row).Error
	if err != nil {
		return nil, types.NewError(types.ErrPersistence, "failed to load content row").WithCause(err)
	}
	return &row, nil
}

// =============================================================================
// 📊 统计聚合
// =============================================================================

// Stats 审核统计（尾随窗口，只读）
type Stats struct {
	WindowDays   int                      `json:"window_days"`
	Total        int64                    `json:"total"`
	Approved     int64                    `json:"approved"`
	Rejected     int64                    `json:"rejected"`
	Pending      int64                    `json:"pending"`
	ApprovalRate float64                  `json:"approval_rate"`
	ByKind       map[string]int64         `json:"by_kind"`
	ByCategory   map[types.Category]int64 `json:"by_category"`

	// PendingTasks 当前未终态的视频任务数（实时值，不属于窗口聚合）
	PendingTasks int64 `json:"pending_tasks"`
}

// StatsSince 聚合窗口内的审计记录。
// 分类分布来自 JSON 标记列，在应用侧聚合以保持跨驱动可移植。
func (s *Store) StatsSince(ctx context.Context, days int) (*Stats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	logs, err := s.ListLogsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		WindowDays: days,
		ByKind:     map[string]int64{},
		ByCategory: map[types.Category]int64{},
	}
	for i := range logs {
		entry := &logs[i]
		stats.Total++
		stats.ByKind[entry.ContentKind]++

		switch types.Status(entry.Status) {
		case types.StatusApproved:
			stats.Approved++
		case types.StatusRejected:
			stats.Rejected++
		case types.StatusPending, types.StatusProcessing:
			stats.Pending++
		}

		for _, flag := range entry.Flags {
			stats.ByCategory[flag.Category]++
		}
	}
	if stats.Total > 0 {
		stats.ApprovalRate = float64(stats.Approved) / float64(stats.Total)
	}
	return stats, nil
}
