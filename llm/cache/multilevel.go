package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	icache "github.com/BaSui01/visiondesc/internal/cache"
)

// Config 缓存配置
type Config struct {
	Enabled      bool          `yaml:"enabled" json:"enabled" env:"ENABLED"`
	LocalMaxSize int           `yaml:"local_max_size" json:"local_max_size" env:"LOCAL_MAX_SIZE"`
	LocalTTL     time.Duration `yaml:"local_ttl" json:"local_ttl" env:"LOCAL_TTL"`
	RemoteTTL    time.Duration `yaml:"remote_ttl" json:"remote_ttl" env:"REMOTE_TTL"`
	KeyPrefix    string        `yaml:"key_prefix" json:"key_prefix"`
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		LocalMaxSize: 1000,
		LocalTTL:     10 * time.Minute,
		RemoteTTL:    24 * time.Hour,
		KeyPrefix:    "visiondesc:",
	}
}

// MultiLevelCache 多级缓存：L1 本地 LRU，L2 远端 Store（可选）
type MultiLevelCache struct {
	local  *LRUCache
	remote Store
	config Config
	logger *zap.Logger
}

// NewMultiLevelCache 创建多级缓存，remote 为 nil 时只使用本地缓存
func NewMultiLevelCache(remote Store, config Config, logger *zap.Logger) *MultiLevelCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MultiLevelCache{
		local:  NewLRUCache(config.LocalMaxSize, config.LocalTTL),
		remote: remote,
		config: config,
		logger: logger.With(zap.String("component", "description_cache")),
	}
}

// Get 获取缓存
func (c *MultiLevelCache) Get(ctx context.Context, key string) (*Entry, error) {
	// 1. 查本地缓存
	if entry, ok := c.local.Get(key); ok {
		c.logger.Debug("local cache hit", zap.String("key", key))
		return entry, nil
	}

	if c.remote == nil {
		return nil, ErrCacheMiss
	}

	// 2. 查远端缓存
	var entry Entry
	err := c.remote.GetJSON(ctx, c.remoteKey(key), &entry)
	if err == nil {
		// 回填本地缓存
		c.local.Set(key, &entry)
		c.logger.Debug("remote cache hit", zap.String("key", key))
		return &entry, nil
	}
	if !icache.IsCacheMiss(err) {
		c.logger.Warn("remote cache get failed", zap.String("key", key), zap.Error(err))
	}

	return nil, ErrCacheMiss
}

// Set 写入两级缓存，远端失败时本地仍然保留
func (c *MultiLevelCache) Set(ctx context.Context, key string, entry *Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	c.local.Set(key, entry)

	if c.remote != nil {
		if err := c.remote.SetJSON(ctx, c.remoteKey(key), entry, c.config.RemoteTTL); err != nil {
			c.logger.Warn("remote cache set failed", zap.String("key", key), zap.Error(err))
			return err
		}
	}

	c.logger.Debug("cache set", zap.String("key", key))
	return nil
}

// Delete 删除缓存
func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	c.local.Delete(key)

	if c.remote != nil {
		return c.remote.Delete(ctx, c.remoteKey(key))
	}
	return nil
}

func (c *MultiLevelCache) remoteKey(key string) string {
	return c.config.KeyPrefix + key
}
