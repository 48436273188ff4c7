// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 moderation 实现内容审核核心：按模态分派的三个审核器、
统一入口 Orchestrator 与带 TTL 缓存的策略配置。

# 概述

调用方 → Orchestrator.Moderate(content) → 按模态分派 →
classify.Provider → 决定 → 审计日志落库 +（同步模态）立即返回，
或（视频）pending 任务 → 回调/轮询 → 终态落库 → 内容仓库可见性更新。

# 组件

  - TextModerator：同步文本审核；<3 字符的输入直接放行（策略性
    短路，不是错误），不消耗分类调用。支持信号量限并发的批量审核。
  - AudioModerator：同步音频审核；先验证扩展名与时长，再消耗
    分类调用；验证失败是确定性拒绝，与内容拒绝可区分。
  - VideoModerator：异步状态机。pending →（processing）→
    completed|failed；回调与轮询汇聚到同一条终态路径，靠
    "status = pending" 条件更新实现幂等，后到者是可检测的空操作。
  - Orchestrator：唯一入口；读取策略（全局开关为 false 时零耗时
    放行），穷尽分派，聚合统计，透传视频轮询/回调。
  - PolicyCache：显式 get/invalidate 的进程内策略缓存（60s TTL）
    + Redis 二级缓存；存储读取失败时退回硬编码默认策略——审核
    必须降级到某个确定的策略，绝不降级到未定义。

# 故障策略

同步路径的服务商故障默认放行（fail-open），结果带
"error-fallback" 标签供下游分析区分；strict_mode / auto_reject
打开时翻转为拒绝。视频提交失败降级为 pending 加安抚性提示语，
绝不把服务商原始错误暴露给用户。日志落库失败只记运维日志，
不推翻已作出的审核决定。
*/
package moderation
