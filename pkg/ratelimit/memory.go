package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket: Points tokens refill evenly
// over Window. It has no block period. Idle keys are evicted by a janitor
// goroutine that stops when Close is called.
type MemoryLimiter struct {
	policy  Policy
	limit   rate.Limit
	mu      sync.Mutex
	entries map[string]*visitor
	idleTTL time.Duration
	nowFunc func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewMemoryLimiter creates a limiter and starts its cleanup loop.
func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	l := &MemoryLimiter{
		policy:  policy,
		limit:   rate.Limit(float64(policy.Points) / policy.Window.Seconds()),
		entries: make(map[string]*visitor),
		idleTTL: 2 * policy.Window,
		nowFunc: time.Now,
		done:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Policy returns the limiter's policy.
func (l *MemoryLimiter) Policy() Policy { return l.policy }

// Allow takes a token for key if one is available.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.nowFunc()

	l.mu.Lock()
	v, ok := l.entries[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.policy.Points)}
		l.entries[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)
	res := Result{
		Allowed:    allowed,
		Limit:      l.policy.Points,
		Remaining:  max(0, int(math.Floor(tokens))),
		ResetAfter: l.refillTime(float64(l.policy.Points) - tokens),
	}
	if !allowed {
		res.RetryAfter = l.refillTime(1 - tokens)
	}
	return res, nil
}

func (l *MemoryLimiter) refillTime(tokens float64) time.Duration {
	if tokens <= 0 || l.limit <= 0 {
		return 0
	}
	return time.Duration(tokens / float64(l.limit) * float64(time.Second))
}

// Close stops the cleanup goroutine.
func (l *MemoryLimiter) Close() {
	l.once.Do(func() { close(l.done) })
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *MemoryLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	for key, v := range l.entries {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.entries, key)
		}
	}
}

func (l *MemoryLimiter) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
