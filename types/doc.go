// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 visiondesc 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 llm、api、cmd 等上层模块
提供统一的错误契约与 Context 传播辅助，避免循环依赖。

# 核心类型

  - Error / ErrorCode：结构化错误体系，含 HTTP 状态码、Retryable、Provider 标记
  - WithRequestID / WithBatchID / WithProvider：Context 传播辅助

# 错误分类

  - 前置条件错误：BATCH_TOO_LARGE、INVALID_REQUEST，整批调用直接拒绝
  - 配置错误：NOT_CONFIGURED，在构造 Provider 时同步返回
  - 单项错误：IMAGE_LOAD_FAILED、EMPTY_RESPONSE、UPSTREAM_* 等，
    在批处理中被转换为该项的失败结果，不影响同批其他项
*/
package types
