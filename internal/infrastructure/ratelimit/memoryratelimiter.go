package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter is a per-process fixed window limiter used when Redis is disabled.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	start time.Time
	count int
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string, limits Limits) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	allowed := true
	for _, w := range limits.windows() {
		if w.limit <= 0 {
			continue
		}
		k := key + "|" + w.duration.String()
		b, ok := l.buckets[k]
		if !ok || now.Sub(b.start) >= w.duration {
			b = &bucket{start: now}
			l.buckets[k] = b
		}
		b.count++
		if b.count > w.limit {
			allowed = false
		}
	}
	return allowed, nil
}

func (l *MemoryRateLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range (Limits{}).windows() {
		delete(l.buckets, key+"|"+w.duration.String())
	}
	return nil
}
