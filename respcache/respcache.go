// Package respcache provides optional caching of JSON API response
// bodies, keyed by request URL. Implementations satisfy the
// httpclient.ResponseCache contract.
package respcache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is the contract for response cache implementations
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte, ttl time.Duration)
	Delete(key string)
	Close() error
}

// RedisClient defines the interface for Redis client operations
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// entry wraps a cached body with its expiry, since the in-memory
// backend has no per-entry TTL of its own
type entry struct {
	Data      []byte `json:"data"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"` // unix nanoseconds; 0 means no expiry
}

func (e *entry) expired() bool {
	return e.ExpiresAt > 0 && time.Now().UnixNano() > e.ExpiresAt
}

// MemoryConfig represents in-memory cache configuration
type MemoryConfig struct {
	SizeMB       int           `yaml:"size_mb" json:"size_mb"`
	MaxEntrySize int           `yaml:"max_entry_size" json:"max_entry_size"`
	Shards       int           `yaml:"shards" json:"shards"` // must be power of 2
	LifeWindow   time.Duration `yaml:"life_window" json:"life_window"`
}

func (c *MemoryConfig) ApplyDefaults() {
	if c.SizeMB == 0 {
		c.SizeMB = 64
	}
	if c.MaxEntrySize == 0 {
		c.MaxEntrySize = 1048576
	}
	if c.Shards == 0 {
		c.Shards = 256 // power of 2
	}
	if c.LifeWindow == 0 {
		c.LifeWindow = 10 * time.Minute
	}
}

// RedisConfig represents Redis cache configuration
type RedisConfig struct {
	Addr        string        `yaml:"addr" json:"addr"`
	Password    string        `yaml:"password" json:"password"`
	DB          int           `yaml:"db" json:"db"`
	ReadTimeout time.Duration `yaml:"read_timeout" json:"read_timeout"`
	SendTimeout time.Duration `yaml:"send_timeout" json:"send_timeout"`
	PoolSize    int           `yaml:"pool_size" json:"pool_size"`
}

func (c *RedisConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 1000 * time.Millisecond
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = 1000 * time.Millisecond
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
}
