// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

// Package api 定义 ModFlow HTTP 接口的请求与响应结构。
//
// 所有端点共用 handlers.Response 信封；请求结构在进入审核核心
// 前由各自的 Validate 方法完成校验。
//
// 端点一览：
//   - POST /v1/moderate        单条内容审核
//   - POST /v1/moderate/batch  批量内容审核
//   - POST /v1/webhooks/video  视频审核回调（无条件 200）
//   - GET  /v1/tasks/{id}      异步任务查询
//   - GET  /v1/config          当前策略（需管理员令牌）
//   - PUT  /v1/config          策略更新（需管理员令牌）
//   - GET  /v1/stats           审核统计
//   - GET  /v1/events          决定事件 WebSocket 订阅
package api
