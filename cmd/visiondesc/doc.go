// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 visiondesc 命令行与 HTTP 服务入口。

# 概述

cmd/visiondesc 基于 cobra 组织子命令：describe 描述单张图片，batch 以有界并发
描述多张图片并输出 JSON，serve 启动 HTTP API，version 打印构建信息。
配置按 默认值 → YAML → .env → 环境变量 → 命令行参数 的顺序合并。

# 核心类型

  - App：由配置装配的 Registry、Redis 缓存、Prometheus 指标与遥测
  - Server：HTTP 路由、中间件链与 internal/server.Manager
  - Middleware：HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 中间件链：Recovery、RequestID、SecurityHeaders、OTelTracing、
    RequestLogger、MetricsMiddleware（按路由模式打标签）
  - 批量退出码：仅前置条件错误非零；--fail-on-error 时任一失败返回 2
  - 优雅关闭：SIGINT/SIGTERM → 排空请求 → 关闭 Redis → 刷新遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
