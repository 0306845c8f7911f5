package respcache

import (
	"time"

	"github.com/zenaku555usm/fetchkit/httpclient"
)

// Ensure Tiered implements Cache and the client contract
var _ Cache = (*Tiered)(nil)
var _ httpclient.ResponseCache = (*Tiered)(nil)

// Tiered is a composite cache that consults its layers in order,
// typically an in-process cache in front of Redis. A hit in a later
// layer is propagated forward so subsequent lookups stay local.
type Tiered struct {
	caches       []Cache
	logger       httpclient.Logger
	propagateTTL time.Duration // TTL used when copying a hit forward; 0 disables propagation
}

// TieredOption is a functional option for configuring Tiered
type TieredOption func(*Tiered)

// WithTieredLogger sets the logger for Tiered
func WithTieredLogger(logger httpclient.Logger) TieredOption {
	return func(tc *Tiered) {
		tc.logger = logger
	}
}

// WithPropagation copies hits from later layers into earlier ones with
// the given TTL
func WithPropagation(ttl time.Duration) TieredOption {
	return func(tc *Tiered) {
		tc.propagateTTL = ttl
	}
}

// NewTiered creates a tiered cache over the provided layers
func NewTiered(caches []Cache, opts ...TieredOption) *Tiered {
	tc := &Tiered{
		caches: caches,
		logger: httpclient.NoopLogger{},
	}

	for _, opt := range opts {
		opt(tc)
	}

	return tc
}

// Get retrieves the value from the first layer that has the key
func (tc *Tiered) Get(key string) ([]byte, bool) {
	if len(tc.caches) == 0 {
		tc.logger.Warn("no cache layers configured", "key", key)
		return nil, false
	}

	for i, c := range tc.caches {
		if data, found := c.Get(key); found {
			if i > 0 && tc.propagateTTL > 0 {
				for j := 0; j < i; j++ {
					tc.caches[j].Set(key, data, tc.propagateTTL)
				}
			}
			return data, true
		}
	}

	return nil, false
}

// Set stores the value in all layers
func (tc *Tiered) Set(key string, val []byte, ttl time.Duration) {
	for _, c := range tc.caches {
		c.Set(key, val, ttl)
	}
}

// Delete removes the entry from all layers
func (tc *Tiered) Delete(key string) {
	for _, c := range tc.caches {
		c.Delete(key)
	}
}

// Close closes all layers, returning the first error seen
func (tc *Tiered) Close() error {
	var firstErr error
	for _, c := range tc.caches {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
