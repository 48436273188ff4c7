// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

// Package handlers 实现 ModFlow 的 HTTP 处理器。
//
// 处理器只做协议转换与校验，审核语义全部在 moderation 包内；
// 错误通过统一的 Response 信封返回，错误码到 HTTP 状态码的映射
// 见 common.go。
package handlers
