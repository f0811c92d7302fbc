package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/newslens/internal/retry"
	"github.com/ppiankov/newslens/internal/util"
)

const (
	anthropicDefaultModel = "claude-3-5-haiku-20241022"
	anthropicVersion      = "2023-06-01"

	anthropicStopMaxTokens = "max_tokens"

	// The Messages API has no JSON response format switch
	anthropicJSONInstruction = "Respond with a single JSON object and nothing else."
)

// AnthropicProvider implements Provider for the Anthropic Messages API
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	return &AnthropicProvider{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.timeout(),
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable sends a minimal message as a credential check
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	req := anthropicRequest{
		Model:     p.config.model(Request{}, anthropicDefaultModel),
		MaxTokens: 10,
		Messages: []anthropicMessage{
			{Role: "user", Content: "Hi"},
		},
	}

	if _, err := p.makeRequest(ctx, req); err != nil {
		zerolog.Ctx(ctx).Warn().Str("provider", p.Name()).Err(err).Msg("API check failed")
		return false
	}
	return true
}

// Complete sends one message exchange
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	system := req.System
	if req.JSON {
		system = strings.TrimSpace(system + "\n\n" + anthropicJSONInstruction)
	}

	apiReq := anthropicRequest{
		Model:     p.config.model(req, anthropicDefaultModel),
		MaxTokens: p.config.maxTokens(req),
		System:    system,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: p.config.Temperature,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	resp, err := p.makeRequest(ctxWithTimeout, apiReq)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}
	if resp.StopReason == anthropicStopMaxTokens {
		return nil, fmt.Errorf("anthropic: %w", ErrTruncated)
	}

	return &Response{
		Text:       strings.TrimSpace(text.String()),
		Model:      resp.Model,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

func (p *AnthropicProvider) makeRequest(ctx context.Context, apiReq anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		statusErr := &retry.StatusError{
			Service:    "anthropic",
			StatusCode: httpResp.StatusCode,
			Message:    string(respBody),
		}
		var apiErr anthropicError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			statusErr.Message = apiErr.Error.Type + " - " + apiErr.Error.Message
		}
		return nil, statusErr
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("anthropic: unmarshal response: %w", err)
	}

	return &resp, nil
}
