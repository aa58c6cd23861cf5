package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter is a fixed-window quota: capacity tokens per refill period.
// It matches providers that publish "N calls per minute" limits.
type TokenLimiter struct {
	sync.Mutex
	capacity     int
	remaining    int
	refillPeriod time.Duration
	lastRefill   time.Time
	pollEvery    time.Duration
}

func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	return NewTokenLimiterWithPeriod(tokensPerMinute, time.Minute)
}

func NewTokenLimiterWithPeriod(tokens int, period time.Duration) *TokenLimiter {
	return &TokenLimiter{
		capacity:     tokens,
		remaining:    tokens,
		refillPeriod: period,
		lastRefill:   time.Now(),
		pollEvery:    100 * time.Millisecond,
	}
}

// Wait blocks until tokens are available or ctx is done.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.refill()

		l.Lock()
		if l.remaining >= tokens {
			l.remaining -= tokens
			l.Unlock()
			return nil
		}
		l.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.pollEvery):
		}
	}
}

func (l *TokenLimiter) refill() {
	l.Lock()
	defer l.Unlock()

	now := time.Now()
	if now.Sub(l.lastRefill) >= l.refillPeriod {
		l.remaining = l.capacity
		l.lastRefill = now
	}
}

func (l *TokenLimiter) GetRemaining() int {
	l.Lock()
	defer l.Unlock()
	return l.remaining
}
