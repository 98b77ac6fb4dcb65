// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 claude 提供 Anthropic Claude 系列模型的 Provider 适配实现，基于官方
anthropic-sdk-go 调用 Messages API（/v1/messages）。

# 核心结构体

  - ClaudeProvider：独立实现 llm.Provider 接口（不复用 openai 实现）

# 协议差异

  - 认证使用 x-api-key 请求头（非 Bearer Token）
  - 图片总是先经 multimodal.Loader 读取，再以 base64 图片块发送；
    媒体类型收敛到 jpeg / png / gif / webp 之一
  - 系统提示通过独立的 system 字段传递
  - 响应 content 为数组，只拼接 text 块

# 默认值

  - 模型：claude-3-sonnet-20240229
*/
package claude
