// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

// Package server 提供 HTTP 服务器的生命周期管理：
// 非阻塞启动、信号驱动的优雅关闭与异步错误上报。
package server
