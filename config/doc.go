// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

// Package config 提供 ModFlow 的统一配置加载。
//
// 加载优先级：默认值 → YAML 文件 → MODFLOW_ 前缀环境变量。
// 嵌套字段的环境变量名按层级拼接，例如数据库驱动对应
// MODFLOW_DATABASE_DRIVER。
//
// 审核策略（开关与阈值）不在此处：策略存在数据库里，
// 通过 /v1/config 管理端点在运行时修改。
package config
