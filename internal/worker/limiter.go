package worker

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter is a keyed token-bucket limiter. Keys are opaque: the LLM
// client keys by provider name, the transcript fetcher by host.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter. A non-positive rate disables throttling.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until a token for key is available or ctx is done
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if l == nil {
		return nil
	}
	return l.get(key).Wait(ctx)
}

// WaitURL waits on the limiter keyed by the URL's host
func (l *Limiter) WaitURL(ctx context.Context, rawURL string) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}
	return l.Wait(ctx, host)
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[key] = limiter

	return limiter
}

func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
