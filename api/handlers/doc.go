// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供图片描述 HTTP API 的请求处理器实现。

# 概述

handlers 包实现了所有 HTTP 端点的请求处理逻辑，包括单张与批量图片描述、
服务商列表、健康检查以及统一的响应/错误处理。
所有 Handler 均遵循标准 net/http 接口，通过 Swagger 注解生成 API 文档。

# 核心类型

  - DescribeHandler：/v1/describe、/v1/describe/batch、/v1/providers
  - HealthHandler：服务健康检查（/health, /healthz, /ready, /version）
  - Response：统一 JSON 响应结构（success + data + error + timestamp）
  - ErrorInfo：结构化错误信息，含 code、message、provider、retryable
  - ResponseWriter：包装 http.ResponseWriter 以捕获状态码
  - HealthCheck：可插拔健康检查接口（Redis、服务商注册表）

# 主要能力

  - 统一响应格式：WriteSuccess / WriteError / WriteServiceError
  - 请求验证：DecodeJSONBody（大小限制 + 严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码自动映射（4xx/5xx）
  - 按请求选择服务商，缺省使用默认服务商
  - 批量结果与输入顺序一致，单项失败只体现在对应结果中
*/
package handlers
