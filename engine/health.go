package engine

import (
	"context"
	"sync"
	"time"
)

// DefaultHealthTTL is how long a health probe result is trusted before the
// provider is probed again.
const DefaultHealthTTL = 30 * time.Second

// healthCache caches the result of a provider health probe so availability
// checks stay cheap on the fallback hot path.
type healthCache struct {
	check func(ctx context.Context) error
	ttl   time.Duration

	mu      sync.Mutex
	probed  time.Time
	lastErr error
}

func newHealthCache(e Engine, ttl time.Duration) *healthCache {
	if ttl <= 0 {
		ttl = DefaultHealthTTL
	}
	hc := &healthCache{ttl: ttl}
	if checker, ok := e.(HealthChecker); ok {
		hc.check = checker.CheckHealth
	}
	return hc
}

// available reports whether the provider is usable, refreshing the cached
// probe when it has gone stale.
func (h *healthCache) available(ctx context.Context) bool {
	if h.check == nil {
		return true
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if time.Since(h.probed) > h.ttl {
		h.lastErr = h.check(ctx)
		h.probed = time.Now()
	}
	return h.lastErr == nil
}

// invalidate drops the cached probe so the next availability check re-probes.
func (h *healthCache) invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probed = time.Time{}
}
