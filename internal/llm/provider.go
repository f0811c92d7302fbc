package llm

import (
	"context"
	"time"

	"github.com/ppiankov/newslens/internal/model"
)

// Provider is a single LLM backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one system+user exchange and returns the reply text
	Complete(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request is one completion call
type Request struct {
	// System is the instruction message; may be empty
	System string

	// Prompt is the user message
	Prompt string

	// JSON asks the backend to constrain output to a JSON object
	JSON bool

	// Model overrides the configured model
	Model string

	// MaxTokens overrides the configured limit
	MaxTokens int
}

// Response is the backend's reply
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "groq", "openai", "anthropic", "ollama"
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout bounds each individual call, in seconds
	Timeout int

	MaxTokens   int
	Temperature float64

	// MaxRetries bounds retries of transient failures per call
	MaxRetries int

	// Outbound throttle shared by every call through one Client
	RequestsPerSecond float64
	Burst             int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return ConfigFromModel(model.DefaultConfig().LLM)
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:          c.Provider,
		Model:             c.Model,
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		MaxTokens:         c.MaxTokens,
		Temperature:       c.Temperature,
		MaxRetries:        c.MaxRetries,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		HTTPProxy:         c.HTTPProxy,
		HTTPSProxy:        c.HTTPSProxy,
		NoProxy:           c.NoProxy,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1024
}

func (c Config) model(req Request, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}
