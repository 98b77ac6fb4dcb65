// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供图片描述结果的多级缓存，通过本地 LRU 与 Redis
协同减少对同一图片、同一提示词的重复 Provider 调用。

# 核心接口

  - Cache：描述缓存接口，定义 Get/Set/Delete 操作。
  - Store：远端存储接口，由 internal/cache.Manager 实现。
  - MultiLevelCache：多级缓存实现，本地 LRU 作为 L1、远端 Store 作为 L2。
  - LRUCache：带 TTL 的 O(1) 本地缓存。

# 主要能力

  - 多级缓存：L2 命中时自动回填 L1。
  - 降级：远端读写失败只记录 Warn 日志，不影响描述调用。
  - 缓存键：GenerateKey 对 Provider、模型、提示词、系统提示词、
    最大 Token 数与图片标识做 SHA-256，任一字段变化即视为不同请求。

# 使用方式

	mgr, _ := icache.NewManager(icache.Config{Addr: "localhost:6379"}, logger)
	c := cache.NewMultiLevelCache(mgr, cache.DefaultConfig(), logger)
	key := cache.GenerateKey(cache.KeyParts{Provider: "openai", Identifier: url})
	entry, err := c.Get(ctx, key)
*/
package cache
