package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit is one token bucket's shape.
type Limit struct {
	RequestsPerSecond float64
	BurstSize         int
}

func (l Limit) valid() bool {
	return l.RequestsPerSecond > 0 && l.BurstSize > 0
}

type Config struct {
	Limit
	// Overrides replaces the shared limit for specific upstreams.
	Overrides map[string]Limit
}

func DefaultConfig() Config {
	return Config{Limit: Limit{RequestsPerSecond: 10, BurstSize: 20}}
}

// UpstreamLimiter keeps one token bucket per upstream API. All requests
// share it, so concurrent searches together stay under the upstream quota.
type UpstreamLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	cfg     Config
}

func NewUpstreamLimiter(cfg Config) *UpstreamLimiter {
	def := DefaultConfig().Limit
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = def.BurstSize
	}
	return &UpstreamLimiter{
		buckets: make(map[string]*rate.Limiter),
		cfg:     cfg,
	}
}

// Limiter returns the bucket for upstream, creating it on first use.
func (u *UpstreamLimiter) Limiter(upstream string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()

	if b, ok := u.buckets[upstream]; ok {
		return b
	}

	l := u.cfg.Limit
	if o, ok := u.cfg.Overrides[upstream]; ok && o.valid() {
		l = o
	}
	b := rate.NewLimiter(rate.Limit(l.RequestsPerSecond), l.BurstSize)
	u.buckets[upstream] = b
	return b
}

// Wait blocks until upstream admits one request and reports how long it waited.
func (u *UpstreamLimiter) Wait(ctx context.Context, upstream string) (time.Duration, error) {
	start := time.Now()
	err := u.Limiter(upstream).Wait(ctx)
	return time.Since(start), err
}
