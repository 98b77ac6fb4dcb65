// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 batch 提供有界并发的批量执行器，将单项异步操作（如"描述一张图片"）
应用到一组有序标识符上，并返回与输入一一对应的结果列表。

# 概述

Executor 采用信号量限流的扇出模型：每启动一项前获取一个许可，
该项结束（无论成功或失败）后立即释放，下一项按输入顺序补位。
与按固定分组等待整组完成的分块方式不同，慢项不会拖住后续的快项。

# 核心类型

  - Operation：单项操作 func(ctx, item) (string, error)。
  - Result：单项结果 {Identifier, Success, Description, Error}。
  - Config：并发上限（默认 3）与批大小上限（默认 20，<=0 表示不限制）。
  - Executor：批量执行器，可挂载 Observer 与 zap 日志。
  - Observer：单项开始/结束回调，用于指标与追踪。

# 保证

  - len(results) == len(items)，results[i].Identifier == items[i]。
  - 任意时刻正在执行的 Operation 数量不超过 Concurrency。
  - 单项失败（含 panic）被记录为该项的失败结果，不中断整批。
  - 空输入返回空切片，不调用 Operation。
  - 超出批大小上限时整批拒绝，不启动任何 Operation。
  - 执行器本身不做重试，每个已启动项恰好调用一次 Operation。

# 使用方式

	exec := batch.NewExecutor(batch.DefaultConfig())
	results, err := exec.Run(ctx, []string{"a.jpg", "b.jpg"}, describeOne)
	if err != nil {
	    // 仅前置条件错误（如批过大）
	}
	summary := batch.Summarize(results)
*/
package batch
