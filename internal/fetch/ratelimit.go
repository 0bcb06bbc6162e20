package fetch

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between requests per client class.
// It is not fair across classes; each class is throttled independently.
type Limiter struct {
	mu    sync.Mutex
	rates map[string]int // requests/second per class
	last  map[string]time.Time
}

// NewLimiter creates a Limiter from a class -> requests/second map.
// Classes absent from the map are limited to 1 request/second.
func NewLimiter(rates map[string]int) *Limiter {
	return &Limiter{
		rates: rates,
		last:  make(map[string]time.Time),
	}
}

// interval returns the minimum spacing between requests for a class.
func (l *Limiter) interval(class string) time.Duration {
	rate := l.rates[class]
	if rate < 1 {
		rate = 1
	}
	return time.Second / time.Duration(rate)
}

// Acquire blocks until at least 1/rate has elapsed since the class's last
// permitted request, then records the new request instant. time.Now values
// carry Go's monotonic clock reading, so repeated calls do not drift.
func (l *Limiter) Acquire(ctx context.Context, class string) error {
	interval := l.interval(class)

	for {
		l.mu.Lock()
		now := time.Now()
		allowed := l.last[class].Add(interval)
		if !now.Before(allowed) {
			l.last[class] = now
			l.mu.Unlock()
			return nil
		}
		wait := allowed.Sub(now)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
