// Package ratelimit gates outgoing requests per source client.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging/debugging.
type Limiter struct {
	limiter  *rate.Limiter
	name     string
	interval time.Duration
}

// New creates a limiter that lets one request through per interval.
// Burst is fixed at 1 so back-to-back calls are always spaced by at least
// interval, and the first call proceeds immediately.
func New(name string, interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		limiter:  rate.NewLimiter(limit, 1),
		name:     name,
		interval: interval,
	}
}

// NewPerSecond creates a limiter allowing requestsPerSecond with an equal burst.
func NewPerSecond(name string, requestsPerSecond int) *Limiter {
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		name:     name,
		interval: time.Second / time.Duration(max(requestsPerSecond, 1)),
	}
}

// Wait blocks until the limiter allows a request to proceed and reserves
// the dispatch slot. A nil Limiter never blocks.
// Returns an error if the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Allow reports whether a request can proceed without blocking.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// Name returns the name of this rate limiter.
func (l *Limiter) Name() string {
	return l.name
}

// Interval returns the minimum spacing between dispatches.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
