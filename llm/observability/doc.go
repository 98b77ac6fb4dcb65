// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 observability 提供图片描述调用的 OpenTelemetry 追踪与指标。

# 概述

Metrics 为每次描述调用创建 visiondesc.describe Span，为每个批次创建
visiondesc.describe_batch Span，并记录调用次数、错误、缓存命中、
延迟直方图与活跃请求数。TracerProvider 与 MeterProvider 默认取全局
Provider，由 internal/telemetry 在启用时安装 OTLP 导出器。

# 核心类型

  - Metrics：持有 Tracer、Meter 与各类计数器/直方图。
  - RequestAttrs / ResponseAttrs：单次描述的输入与结果属性。
  - BatchAttrs：批次属性（Provider、批次 ID、大小、并发度）。
*/
package observability
