package ratelimit

import (
	"sync"
	"time"

	"github.com/landriskai/landrisk/internal/clock"
)

const window = time.Minute

// Limiter is a per-client fixed-window admission guard. State is process
// local and in memory: running N instances multiplies the effective limit by
// N. That is an accepted property of an abuse deterrent, not a billing-grade
// quota.
type Limiter struct {
	limit int
	clock clock.Clock

	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	windowStart time.Time
	count       int
}

// Result carries the admission decision. RetryAfter is only meaningful on a
// rejection and is never below one second.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// New builds a limiter admitting limit requests per rolling minute per
// client key. limit <= 0 disables limiting.
func New(limit int, clk clock.Clock) *Limiter {
	return &Limiter{
		limit:    limit,
		clock:    clk,
		counters: make(map[string]*windowCounter),
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0
}

func (l *Limiter) Allow(key string) Result {
	if !l.Enabled() {
		return Result{Allowed: true}
	}

	now := l.clock.Now()

	l.mu.Lock()
	counter, ok := l.counters[key]
	if !ok {
		counter = &windowCounter{windowStart: now}
		l.counters[key] = counter
	}
	if now.Sub(counter.windowStart) >= window {
		counter.windowStart = now
		counter.count = 0
	}
	counter.count++
	allowed := counter.count <= l.limit
	remaining := window - now.Sub(counter.windowStart)
	l.mu.Unlock()

	if allowed {
		return Result{Allowed: true}
	}
	if remaining < time.Second {
		remaining = time.Second
	}
	return Result{Allowed: false, RetryAfter: remaining}
}
