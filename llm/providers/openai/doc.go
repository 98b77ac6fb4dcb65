// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 openai 提供 OpenAI 视觉模型的 Provider 适配实现，基于官方
openai-go SDK 调用 Chat Completions API（/v1/chat/completions）。

# 核心结构体

  - OpenAIProvider：实现 llm.Provider；请求构造与响应解析由 Settings 参数化，
    Azure OpenAI 通过 NewWithSettings 复用同一实现

# 图片传递

  - http(s) URL 与 data URL 原样作为 image_url 传递
  - 本地文件经 multimodal.Loader 读取后编码为 base64 data URL

# 默认值

  - 模型：gpt-4o（可由配置或请求覆盖）
  - 系统提示：未设置时不发送 system 消息
*/
package openai
