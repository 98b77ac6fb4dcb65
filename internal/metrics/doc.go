// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖
HTTP、图片描述、批量执行与缓存四个维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry。所有指标按 namespace 隔离，
支持多维度 label 分组，通过 /metrics 端点暴露。

# 核心类型

  - Collector：指标收集器，持有 Counter、Histogram、Gauge 等
    Prometheus 向量指标，按业务域分组管理。

# 主要能力

  - HTTP 指标：请求总数与耗时，按 method/path/status 分组，
    状态码归类为 2xx/3xx/4xx/5xx。
  - 描述指标：Provider 调用总数与耗时，按 provider/model/status 分组；
    in-flight Gauge 反映批量执行器当前占用的并发槽位。
  - 批量指标：批次总数（completed/rejected）、批次大小、批次耗时，
    以及按 success/failure 统计的条目数。
  - 缓存指标：命中与未命中计数，按 cache_type 分组。
*/
package metrics
