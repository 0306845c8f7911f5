// Package ratelimit provides per-host request rate limiters for the
// fetch client, so a burst of downloads cannot hammer a single origin.
package ratelimit

import (
	"math"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Limit describes the allowed request rate for a host
type Limit struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int `yaml:"burst" json:"burst"`
}

// Manager hands out one limiter per host, creating them on demand
type Manager struct {
	mu            sync.RWMutex
	hostToLimiter map[string]*rate.Limiter
	limits        map[string]Limit // per-host overrides
	defaultLimit  Limit
}

// NewManager creates a manager with per-host overrides and a default
// limit for everything else. A zero default disables limiting for
// unlisted hosts.
func NewManager(limits map[string]Limit, defaultLimit Limit) *Manager {
	return &Manager{
		hostToLimiter: make(map[string]*rate.Limiter),
		limits:        limits,
		defaultLimit:  defaultLimit,
	}
}

// LimiterFunc adapts the manager to the client's rate limiter callback
func (m *Manager) LimiterFunc() func(*http.Request) *rate.Limiter {
	return func(req *http.Request) *rate.Limiter {
		if req == nil || req.URL == nil {
			return nil
		}
		return m.LimiterFor(req.URL.Host)
	}
}

// LimiterFor returns the limiter for a host, creating it if missing.
// Returns nil when the host has no configured or default limit.
func (m *Manager) LimiterFor(host string) *rate.Limiter {
	cfg, ok := m.limits[host]
	if !ok {
		cfg = m.defaultLimit
	}
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}

	m.mu.RLock()
	if lim, ok := m.hostToLimiter[host]; ok {
		m.mu.RUnlock()
		return lim
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if lim, ok := m.hostToLimiter[host]; ok {
		return lim
	}

	limit := rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	limiter := rate.NewLimiter(limit, burstFor(cfg, limit))
	m.hostToLimiter[host] = limiter
	return limiter
}

func burstFor(cfg Limit, limit rate.Limit) int {
	if cfg.Burst > 0 {
		return cfg.Burst
	}
	if limit <= 1.0 {
		return 1
	}
	return int(math.Ceil(float64(limit)))
}
