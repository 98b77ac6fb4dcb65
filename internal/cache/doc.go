// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供基于 Redis 的缓存连接管理，作为图片描述缓存的 L2 存储。

# 概述

Manager 封装 go-redis 客户端，负责连接生命周期管理，包括初始化时的
Ping 检查、后台健康检查与优雅关闭。可选 TLS 加密连接复用
tlsutil 的加固配置。

# 核心类型

  - Manager：持有 Redis 客户端，提供 Get/Set/Delete/Ping 等基础操作，
    以及 GetJSON/SetJSON 便捷序列化方法。
  - Config：地址、密码、连接池大小、默认 TTL、TLS 开关与健康检查间隔。

# 错误语义

  - ErrCacheMiss：键不存在，可用 IsCacheMiss 判断。
  - ErrClosed：Manager 已关闭。
*/
package cache
