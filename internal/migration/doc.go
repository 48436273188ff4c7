// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 migration 提供审核核心四张表的 Schema 迁移，支持 PostgreSQL、
MySQL 与 SQLite 三种数据库，基于 golang-migrate 实现。

各数据库方言的 SQL 迁移文件通过 embed.FS 内嵌进二进制，迁移器
复用服务已打开的 *sql.DB 连接，由 modflow migrate 子命令触发。

管理的表：

  - moderation_logs    审核决定审计日志（append-only）
  - moderation_tasks   视频异步审核任务
  - moderation_config  命名策略配置（单行）
  - contents           内容可见性投影
*/
package migration
