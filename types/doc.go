// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 types 定义 ModFlow 内容审核核心的领域类型与统一错误模型。

# 概述

本包是整个仓库的类型底座：固定的 8 类违规分类、四级严重度、
审核请求/结果/决定的数据结构，以及带错误码的结构化错误类型。
所有上层组件（classify、moderation、api）共享这里的定义。

# 核心类型

  - Category：固定 8 值违规分类（hate_speech、harassment、violence、
    self_harm、sexual_content、spam、profanity、illegal_activity）。
  - Severity：由分数确定性推导的四级严重度（low/medium/high/critical）。
  - Flag：越过阈值的分类标记，包含分数与面向用户的描述。
  - Result：单次审核结果；Approved 恒等于 len(Flags)==0，
    由构造函数强制，不允许独立设置。
  - Content：按模态（text/audio/video）区分的审核输入联合类型。
  - Decision：调用方得到的最终决定（状态、结果、是否拦截、提示语）。
  - Error：统一错误类型，带错误码、HTTP 状态、可重试标记与底层原因。

# 不变式

  - Result.Approved == (len(Result.Flags) == 0)，永远成立。
  - SeverityForScore 是 [0,1] 上的纯全函数：critical ≥0.9、
    high ≥0.75、medium ≥0.5、否则 low。
*/
package types
