// Package store provides the moderation persistence layer.
// This package is internal and should not be imported by external projects.
//
// 职责：审核日志（append-only）、异步任务、策略配置与内容可见性
// 四张表的 GORM 模型与仓储操作。任务的终态迁移通过
// "status = pending" 条件更新实现幂等：竞争失败方的写入是可检测的
// 空操作。
package store
