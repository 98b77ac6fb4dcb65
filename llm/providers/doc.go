// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供跨模型服务商的通用适配与辅助能力，是所有具体 Provider
实现的公共基础层。各服务商子包（openai、azure、anthropic）依赖本包
完成配置、错误映射与图片传递等共享逻辑。

# 核心类型

  - BaseProviderConfig：所有 Provider 共享的基础配置（APIKey、BaseURL、Model、Timeout、MaxRetries）
  - OpenAIConfig / AzureOpenAIConfig / ClaudeConfig：各服务商配置
  - Configs：按服务商分组的配置集合，WithEnvFallback 读取约定的环境变量
  - Options / Option：构造时的可选依赖（multimodal.Loader）

# 核心函数

  - MapHTTPError：将 HTTP 状态码映射为语义化的 types.Error（含 Retryable 标记）
  - RequestFailed：将 SDK 错误统一为 "<Provider> API request failed: ..." 形式
  - EmptyResponse / MissingConfig：空响应与缺失配置错误
  - ImageURL：远程 URL 透传，本地文件转 base64 data URL
  - ChooseModel：按优先级选择模型（请求 > 配置 > 兜底）
  - HTTPClient：传给 SDK 的 TLS 加固 HTTP 客户端
*/
package providers
