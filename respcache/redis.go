package respcache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/zenaku555usm/fetchkit/httpclient"
)

// Ensure Redis implements Cache and the client contract
var _ Cache = (*Redis)(nil)
var _ httpclient.ResponseCache = (*Redis)(nil)

// Redis is a response cache shared across processes, backed by Redis.
// Expiry is delegated to Redis itself.
type Redis struct {
	client RedisClient
	cfg    *RedisConfig
	logger httpclient.Logger
}

// RedisOption is a functional option for configuring Redis
type RedisOption func(*Redis)

// WithRedisLogger sets the logger for Redis
func WithRedisLogger(logger httpclient.Logger) RedisOption {
	return func(r *Redis) {
		r.logger = logger
	}
}

// NewRedis creates a Redis response cache with the provided client
func NewRedis(cfg *RedisConfig, client RedisClient, opts ...RedisOption) *Redis {
	cfg.ApplyDefaults()

	r := &Redis{
		client: client,
		cfg:    cfg,
		logger: httpclient.NoopLogger{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewRedisClient builds a go-redis client from the configuration
func NewRedisClient(cfg *RedisConfig) RedisClient {
	cfg.ApplyDefaults()

	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.SendTimeout,
		PoolSize:     cfg.PoolSize,
	})
}

// Get retrieves a cached response body if present
func (r *Redis) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ReadTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	return data, true
}

// Set stores a response body with the given TTL
func (r *Redis) Set(key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.SendTimeout)
	defer cancel()

	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		r.logger.Warn("redis cache set failed", "key", key, "error", err)
	}
}

// Delete removes an entry from the cache
func (r *Redis) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.SendTimeout)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("redis cache delete failed", "key", key, "error", err)
	}
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
