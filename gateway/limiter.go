package gateway

import (
	"sync"
	"time"
)

// RateLimiter throttles outbound requests so the data source's request
// limits are never tripped.
type RateLimiter interface {
	Wait()
}

// TokenBucketLimiter is a simple token bucket: rate tokens per second with
// a burst-sized reservoir.
type TokenBucketLimiter struct {
	rate   float64
	burst  int
	tokens float64
	last   time.Time
	mu     sync.Mutex
}

func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucketLimiter{
		rate:   rate,
		burst:  burst,
		tokens: float64(burst),
		last:   time.Now(),
	}
}

// Wait blocks until a token is available, then consumes it.
func (l *TokenBucketLimiter) Wait() {
	l.mu.Lock()
	now := time.Now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	l.last = now
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return
	}
	sleep := time.Duration((1-l.tokens)/l.rate*float64(time.Second)) + time.Millisecond
	l.tokens = 0
	l.mu.Unlock()
	time.Sleep(sleep)
}
