// Package retry runs operations with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config controls retry behavior.
type Config struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	// Retryable decides whether an error is worth another attempt.
	// Defaults to IsTransient.
	Retryable func(error) bool
}

// DefaultConfig is suitable for LLM and HTTP calls.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     8 * time.Second,
		Multiplier:  2.0,
	}
}

// sleepFunc waits between attempts (injectable for tests)
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done.
func Do[T any](ctx context.Context, cfg Config, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// The caller's context ending is never transient.
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !retryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			wait := backoff(cfg, attempt)
			zerolog.Ctx(ctx).Warn().
				Str("op", op).
				Int("attempt", attempt+1).
				Dur("wait", wait).
				Err(err).
				Msg("retrying after transient error")
			if err := sleepFunc(ctx, wait); err != nil {
				return zero, err
			}
		}
	}

	return zero, fmt.Errorf("%s: giving up after %d attempts: %w", op, cfg.MaxRetries+1, lastErr)
}

func backoff(cfg Config, attempt int) time.Duration {
	multiplier := cfg.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	wait := time.Duration(float64(cfg.InitialWait) * math.Pow(multiplier, float64(attempt)))
	if cfg.MaxWait > 0 && wait > cfg.MaxWait {
		wait = cfg.MaxWait
	}
	return wait
}

// StatusError is a non-2xx HTTP response from an upstream service.
type StatusError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d %s", e.Service, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, e.Message)
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
func IsTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsTransient covers StatusError, per-attempt deadlines and network failures.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return IsTransientStatus(statusErr.StatusCode)
	}

	// A per-attempt timeout fired while the caller's context is still live.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
