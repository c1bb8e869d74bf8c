package app

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window counter per key.
type RateLimiter[K comparable] struct {
	mu       sync.Mutex
	history  map[K][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewRateLimiter[K comparable](limit int, interval time.Duration) *RateLimiter[K] {
	return &RateLimiter[K]{
		history:  make(map[K][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RateLimiter[K]) Allow(key K) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[key]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[key] = fresh
		return false
	}

	rl.history[key] = append(fresh, now)
	return true
}

// Forget drops the key's history, e.g. when its connection closes.
func (rl *RateLimiter[K]) Forget(key K) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, key)
}
