package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-endpoint rate limiting for outbound API
// calls (the LLM summarizer is the only network client in the core).
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with a default per-endpoint rate
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the endpoint's limiter admits a request
func (l *Limiter) Wait(ctx context.Context, endpoint string) error {
	return l.getLimiter(endpoint).Wait(ctx)
}

// Allow reports whether a request is admissible without waiting
func (l *Limiter) Allow(endpoint string) bool {
	return l.getLimiter(endpoint).Allow()
}

// SetEndpointRate overrides the rate for a specific endpoint
func (l *Limiter) SetEndpointRate(endpoint string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[endpoint] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) getLimiter(endpoint string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[endpoint]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[endpoint]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[endpoint] = limiter

	return limiter
}
