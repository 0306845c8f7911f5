package respcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/zenaku555usm/fetchkit/httpclient"
)

// Ensure Memory implements Cache and the client contract
var _ Cache = (*Memory)(nil)
var _ httpclient.ResponseCache = (*Memory)(nil)

// Memory is an in-process response cache backed by BigCache
type Memory struct {
	cache        *bigcache.BigCache
	logger       httpclient.Logger
	maxEntrySize int
}

// MemoryOption is a functional option for configuring Memory
type MemoryOption func(*Memory)

// WithMemoryLogger sets the logger for Memory
func WithMemoryLogger(logger httpclient.Logger) MemoryOption {
	return func(m *Memory) {
		m.logger = logger
	}
}

// NewMemory creates a new in-memory response cache
func NewMemory(cfg *MemoryConfig, opts ...MemoryOption) (*Memory, error) {
	cfg.ApplyDefaults()

	config := bigcache.DefaultConfig(cfg.LifeWindow)
	config.HardMaxCacheSize = cfg.SizeMB
	config.Verbose = false
	config.MaxEntrySize = cfg.MaxEntrySize
	config.Shards = cfg.Shards

	c, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, err
	}

	m := &Memory{
		cache:        c,
		logger:       httpclient.NoopLogger{},
		maxEntrySize: cfg.MaxEntrySize,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Get retrieves a cached response body if present and not expired
func (m *Memory) Get(key string) ([]byte, bool) {
	data, err := m.cache.Get(key)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		m.logger.Warn("failed to unmarshal cached response", "key", key, "error", err)
		_ = m.cache.Delete(key)
		return nil, false
	}

	if e.expired() {
		_ = m.cache.Delete(key)
		return nil, false
	}

	return e.Data, true
}

// Set stores a response body with the given TTL
func (m *Memory) Set(key string, val []byte, ttl time.Duration) {
	now := time.Now()

	e := entry{
		Data:      val,
		CreatedAt: now.UnixNano(),
	}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl).UnixNano()
	}

	data, err := json.Marshal(&e)
	if err != nil {
		m.logger.Error("failed to marshal cache entry", "key", key, "error", err)
		return
	}

	if len(data) > m.maxEntrySize {
		m.logger.Warn("response too large for cache",
			"key", key,
			"size", len(data),
			"max_size", m.maxEntrySize)
		return
	}

	if err := m.cache.Set(key, data); err != nil {
		m.logger.Error("failed to set cache entry", "key", key, "error", err)
	}
}

// Delete removes an entry from the cache
func (m *Memory) Delete(key string) {
	_ = m.cache.Delete(key)
}

// Close closes the cache
func (m *Memory) Close() error {
	return m.cache.Close()
}
