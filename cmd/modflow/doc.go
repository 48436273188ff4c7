// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
Package main 提供 ModFlow 服务端程序入口。

# 概述

cmd/modflow 是 ModFlow 内容审核服务的可执行入口，提供 HTTP API 服务、
数据库迁移、健康检查和版本查询等子命令。程序支持 YAML 配置文件加载、
结构化日志（zap）和 Prometheus 指标采集。

# 核心类型

  - Middleware        — HTTP 中间件函数签名 func(http.Handler) http.Handler
  - responseWriter    — 包装 http.ResponseWriter 以捕获状态码

# 主要能力

  - 子命令：serve（启动服务）、migrate（数据库迁移）、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、RequestLogger、
    MetricsMiddleware、RateLimiter（基于 IP）
  - serve 装配：数据库 → 连接池 → Redis 缓存 → Mongo 归档 → 分类提供商
    → 审核编排器 → 路由 → HTTP 服务器
  - 优雅关闭：信号监听 → 停止接受连接 → 等待在途请求 → 释放资源
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
