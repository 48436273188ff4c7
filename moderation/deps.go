package moderation

import (
	"context"
	"time"

	"github.com/BaSui01/modflow/internal/store"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🔌 依赖接口
// =============================================================================

// Store 审核核心需要的持久化操作（*store.Store 实现）
type Store interface {
	CreateLog(ctx context.Context, entry *store.ModerationLog) error
	CreateTask(ctx context.Context, task *store.ModerationTask) error
	GetTask(ctx context.Context, taskID string) (*store.ModerationTask, error)
	CompleteTask(ctx context.Context, taskID string, status types.TaskStatus, result *types.Result) (bool, error)
	LoadPolicy(ctx context.Context) (*types.Policy, error)
	SavePolicy(ctx context.Context, policy types.Policy) error
	SetContentVisibility(ctx context.Context, contentID string, status types.Status, visible bool) error
	StatsSince(ctx context.Context, days int) (*store.Stats, error)
	CountPendingTasks(ctx context.Context) (int64, error)
}

// SharedCache 可选的跨实例二级缓存（internal/cache.Manager 实现）。
// nil 表示未配置 Redis，策略与统计只走本地缓存。
type SharedCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Archiver 原始回调负载归档（internal/archive 实现；nil 表示禁用）
type Archiver interface {
	Append(ctx context.Context, taskID string, payload []byte)
}

// =============================================================================
// 📣 决定事件
// =============================================================================

// Event 审核决定事件（管理后台实时订阅用）
type Event struct {
	ContentID   string            `json:"content_id"`
	ContentKind types.ContentKind `json:"content_kind"`
	Modality    types.Modality    `json:"modality"`
	Status      types.Status      `json:"status"`
	Flags       []types.Flag      `json:"flags,omitempty"`
	At          time.Time         `json:"at"`
}

// EventSink 决定事件订阅端；实现必须非阻塞。nil 表示不发布。
type EventSink interface {
	Publish(event Event)
}
