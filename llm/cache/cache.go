package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache stores image descriptions by key.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
}

// Entry 缓存条目
type Entry struct {
	Description string    `json:"description"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	HitCount    int       `json:"hit_count"`
}

// Store is the remote tier of a MultiLevelCache. internal/cache.Manager
// satisfies it.
type Store interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
