// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 提供统一的图片描述接入层：Provider 抽象、单张描述与有界并发的批量描述。

# 概述

不同模型服务商（OpenAI、Azure OpenAI、Anthropic）在鉴权、请求结构与图片
传递方式上各不相同。本包把它们收敛为同一个 [Provider] 接口，并由 [Service]
在其上叠加默认参数、缓存、限速、批量执行与可观测能力。

# 核心类型

  - [Provider]：单张图片描述接口，提供 Describe / Name / DefaultModel
  - [DescribeOptions]：调用方可选参数（Prompt、MaxTokens、Model、SystemPrompt、Concurrency）
  - [DescribeRequest]：填充默认值后的单张请求
  - [Service]：组合 Provider 与批量执行器的描述服务

# 默认值

  - Prompt：[DefaultPrompt]
  - MaxTokens：[DefaultMaxTokens]
  - Concurrency：[DefaultConcurrency]
  - Model：为空时由 Provider 决定

# 批量语义

[Service.GetDescriptionBatch] 的结果与输入逐位对齐。单张失败只影响对应位置，
不会中断整批；超过单批上限（默认 20）时整批被拒绝且不发起任何调用。

# 子包

  - llm/batch：信号量限流的批量执行器
  - llm/cache：本地 LRU 加 Redis 的两级描述缓存
  - llm/multimodal：图片加载、MIME 检测与 Base64 编码
  - llm/observability：OpenTelemetry 追踪与指标
  - llm/providers：OpenAI / Azure OpenAI / Anthropic 实现
  - llm/factory：按名称构造 Provider

# 使用示例

	provider, _ := factory.NewProvider("openai", cfg, logger)
	svc, _ := llm.NewService(provider, llm.WithLogger(logger))
	desc, err := svc.GetDescription(ctx, "https://example.com/cat.jpg", nil)
	results, err := svc.GetDescriptionBatch(ctx, urls, &llm.DescribeOptions{Concurrency: 5})
*/
package llm
