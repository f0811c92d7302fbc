package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ppiankov/newslens/internal/retry"
	"github.com/ppiankov/newslens/internal/worker"
)

// Completer is what pipeline components need from an LLM
type Completer interface {
	// Complete returns the reply text of a free-text call
	Complete(ctx context.Context, req Request) (string, error)

	// CompleteJSON forces JSON mode and decodes the reply into out
	CompleteJSON(ctx context.Context, req Request, out any) error
}

// Client wraps a Provider with an outbound throttle and retries of
// transient failures. It is safe for concurrent use.
type Client struct {
	provider Provider
	limiter  *worker.Limiter
	retry    retry.Config
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithRetry replaces the retry policy
func WithRetry(cfg retry.Config) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithLimiter replaces the outbound throttle; nil disables it
func WithLimiter(l *worker.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient builds a Client from the provider and its config
func NewClient(provider Provider, config Config, opts ...ClientOption) *Client {
	policy := retry.DefaultConfig()
	policy.MaxRetries = max(config.MaxRetries, 0)

	c := &Client{
		provider: provider,
		limiter:  worker.NewLimiter(config.RequestsPerSecond, config.Burst),
		retry:    policy,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retry.Retryable = IsTransient

	return c
}

// Complete implements Completer
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	name := c.provider.Name()

	resp, err := retry.Do(ctx, c.retry, name, func(ctx context.Context) (*Response, error) {
		if err := c.limiter.Wait(ctx, name); err != nil {
			return nil, err
		}
		return c.provider.Complete(ctx, req)
	})
	if err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Debug().
		Str("provider", name).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Bool("json", req.JSON).
		Msg("llm call completed")

	return resp.Text, nil
}

// CompleteJSON implements Completer. Decoding failures are returned as
// *ParseError after a single attempt.
func (c *Client) CompleteJSON(ctx context.Context, req Request, out any) error {
	req.JSON = true

	text, err := c.Complete(ctx, req)
	if err != nil {
		return err
	}

	return DecodeJSON(text, out)
}
