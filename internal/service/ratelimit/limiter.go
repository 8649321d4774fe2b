package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key, all with the same rate and burst.
type Limiter struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	m     map[string]*rate.Limiter
}

// New builds a keyed limiter refilling perSecond tokens per second.
func New(perSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	lim := rate.Inf
	if perSecond > 0 {
		lim = rate.Limit(perSecond)
	}
	return &Limiter{limit: lim, burst: burst, m: make(map[string]*rate.Limiter)}
}

// PerMinute is New with a per-minute budget and burst of one.
func PerMinute(n int) *Limiter {
	return New(float64(n)/60, 1)
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.m[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.m[key] = b
	}
	return b
}

// Allow returns true if one token can be consumed for key right now.
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

// Wait blocks until a token for key is available or ctx ends.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucket(key).Wait(ctx)
}
