// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 azure 提供 Azure OpenAI 的 Provider 适配实现。请求构造与响应解析
复用 openai.OpenAIProvider，仅替换端点、鉴权与模型选择：

  - 端点：{endpoint}/openai/deployments/{deployment}/chat/completions?api-version=...
  - 鉴权：api-key 请求头
  - 模型：固定为部署名，忽略请求中的 model
  - 系统提示：未设置时发送 "You are a helpful assistant."
  - API 版本：默认 2024-07-01-preview
*/
package azure
