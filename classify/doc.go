// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 classify 提供外部内容分类服务的无状态适配层，将各模态的
请求/响应归一化为内部统一的审核结果形状。

# 概述

分类服务是一个外部黑盒协作方：同步接口接收文本或媒体 URL，
返回各分类的置信度分数（0.0–1.0）；视频走异步通道
（提交 → 轮询/回调）。本包屏蔽服务商的原生分类命名与线格式，
通过固定映射表转换到内部 8 类分类体系，并持有各分类阈值表。

# 核心接口

  - Provider：分类提供者接口，包含 ClassifyText、ClassifyMedia、
    SubmitVideo、PollTask 四个操作。
  - RawOutcome：服务商归一化输出（原生分类分数表 + 可选转写文本）。
  - HiveProvider：Hive 审核 API 适配，带 API Key、超时与客户端限流。

# 设计要点

  - 阈值表刻意不对称：self_harm 阈值最低（0.4），漏报的代价远高于
    误报；spam 阈值最高（0.7），误报会直接阻断正常使用。
  - 多帧/分片媒体按"每类取最大分"归并，绝不取平均——单个违规帧
    不允许被稀释。
  - 未映射的服务商分类不产生标记，但保留在 RawScores 中供审计。
  - 请求带可取消超时（默认 10s）；超时或传输失败返回带错误码的
    provider 错误，调用方按失败即放行（fail-open）处理。
*/
package classify
