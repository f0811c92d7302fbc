package worker

import (
	"context"
	"testing"
	"time"
)

// waitBriefly fails when key has no token available right now
func waitBriefly(l *Limiter, key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, key)
}

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_ZeroRateIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if err := waitBriefly(limiter, "groq"); err != nil {
			t.Fatalf("request %d throttled with rate disabled: %v", i, err)
		}
	}
}

func TestLimiter_NilIsNoop(t *testing.T) {
	var limiter *Limiter
	if err := limiter.Wait(context.Background(), "openai"); err != nil {
		t.Errorf("nil limiter wait failed: %v", err)
	}
	if err := limiter.WaitURL(context.Background(), "https://www.youtube.com/watch?v=abc"); err != nil {
		t.Errorf("nil limiter WaitURL failed: %v", err)
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(0.01, 1)

	if err := waitBriefly(limiter, "groq"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}
	if err := waitBriefly(limiter, "groq"); err == nil {
		t.Errorf("expected exhausted bucket to block")
	}
	if err := waitBriefly(limiter, "anthropic"); err != nil {
		t.Errorf("expected other key to pass: %v", err)
	}
}

func TestLimiter_WaitURLKeysByHost(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	ctx := context.Background()

	if err := limiter.WaitURL(ctx, "https://www.youtube.com/watch?v=abc"); err != nil {
		t.Fatalf("WaitURL failed: %v", err)
	}
	if err := waitBriefly(limiter, "www.youtube.com"); err == nil {
		t.Error("expected host bucket to be exhausted")
	}

	if err := limiter.WaitURL(ctx, "::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	_ = limiter.Wait(context.Background(), "slow")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "slow"); err == nil {
		t.Error("expected wait to fail when context expires first")
	}
}
