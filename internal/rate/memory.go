package rate

import (
	"context"
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

// MemoryLimiter mantiene un token bucket por key. Los buckets inactivos se
// purgan periódicamente para acotar memoria.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   xrate.Limit
	burst   int
	window  time.Duration
}

type bucket struct {
	lim      *xrate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter permite `max` eventos por `window`, con burst igual a max.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		limit:   xrate.Every(window / time.Duration(max)),
		burst:   max,
		window:  window,
	}
	go l.janitor()
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: xrate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()

	if b.lim.Allow() {
		return Result{Allowed: true, Remaining: int64(b.lim.Tokens())}, nil
	}
	return Result{Allowed: false, RetryAfter: l.window / time.Duration(l.burst)}, nil
}

func (l *MemoryLimiter) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		l.mu.Lock()
		for k, b := range l.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(l.buckets, k)
			}
		}
		l.mu.Unlock()
	}
}
