// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 visiondesc 测试的共享工具和辅助函数。

# 概述

testutil 包为整个项目的单元测试提供统一的辅助能力，避免各包重复实现
相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 断言工具: AssertJSONEqual / AssertContains
  - 异步断言: AssertEventuallyTrue / AssertEventuallyEqual / WaitFor / WaitForChannel
  - 并发探针: ConcurrencyProbe 记录同时在途的调用数峰值，用于验证并发上限
  - 数据工具: MustJSON / MustParseJSON

# 子包

  - testutil/mocks: MockProvider（llm.Provider 的可编排实现），支持固定响应、
    按标识符注入错误、人为延迟与调用记录

# 使用示例

	ctx := testutil.TestContext(t)
	probe := testutil.NewConcurrencyProbe()
	provider := mocks.NewMockProvider().WithDelay(10 * time.Millisecond).WithProbe(probe)
	results, err := svc.GetDescriptionBatch(ctx, ids, nil)
	require.LessOrEqual(t, probe.Peak(), 3)
*/
package testutil
