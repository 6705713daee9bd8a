package ratelimit

import (
	"context"
	"time"
)

// Limits caps requests per key in each window. Zero disables a window.
type Limits struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

func (l Limits) windows() []window {
	return []window{
		{time.Minute, l.PerMinute},
		{time.Hour, l.PerHour},
		{24 * time.Hour, l.PerDay},
	}
}

type window struct {
	duration time.Duration
	limit    int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limits Limits) (bool, error)
	Reset(ctx context.Context, key string) error
}
