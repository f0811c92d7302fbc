// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/newslens/internal/llm"
	"github.com/ppiankov/newslens/internal/retry"
)

// Provider answers every call with Handler and records the requests
type Provider struct {
	Handler func(req llm.Request) (string, error)

	mu    sync.Mutex
	calls []llm.Request
}

// Name implements llm.Provider
func (p *Provider) Name() string { return "fake" }

// IsAvailable implements llm.Provider
func (p *Provider) IsAvailable(ctx context.Context) bool { return true }

// Complete implements llm.Provider
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := p.Handler(req)
	if err != nil {
		return nil, err
	}
	return &llm.Response{Text: text, Model: "fake-model"}, nil
}

// Calls returns a copy of every recorded request
func (p *Provider) Calls() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Request(nil), p.calls...)
}

// Count returns how many requests had a system message containing substr
func (p *Provider) Count(substr string) int {
	n := 0
	for _, c := range p.Calls() {
		if strings.Contains(c.System, substr) {
			n++
		}
	}
	return n
}

// NewClient wraps p in an unthrottled llm.Client whose retries wait 1ms
func NewClient(p llm.Provider) *llm.Client {
	return llm.NewClient(p, llm.Config{MaxRetries: 2},
		llm.WithRetry(retry.Config{
			MaxRetries:  2,
			InitialWait: time.Millisecond,
			MaxWait:     time.Millisecond,
			Multiplier:  1,
		}),
		llm.WithLimiter(nil),
	)
}

// Static returns a provider that always answers text
func Static(text string) *Provider {
	return &Provider{Handler: func(llm.Request) (string, error) { return text, nil }}
}
