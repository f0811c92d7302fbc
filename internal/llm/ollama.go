package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/ppiankov/newslens/internal/util"
)

const (
	ollamaDefaultURL   = "http://localhost:11434"
	ollamaDefaultModel = "llama3.1"
)

// OllamaProvider runs completions against a local Ollama server through langchaingo
type OllamaProvider struct {
	llm        *ollama.LLM
	baseURL    string
	httpClient *http.Client
	config     Config
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = ollamaDefaultURL
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(config.model(Request{}, ollamaDefaultModel)),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &OllamaProvider{
		llm:        llm,
		baseURL:    baseURL,
		httpClient: httpClient,
		config:     config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks that the Ollama server answers /api/tags
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("provider", p.Name()).Err(err).Msg("server not reachable")
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Complete sends one chat exchange
func (p *OllamaProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.config.model(req, ollamaDefaultModel)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	var messages []llms.MessageContent
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	maxTokens := p.config.maxTokens(req)
	options := []llms.CallOption{
		llms.WithModel(model),
		llms.WithTemperature(p.config.Temperature),
		llms.WithMaxTokens(maxTokens),
	}
	if req.JSON {
		options = append(options, llms.WithJSONMode())
	}

	resp, err := p.llm.GenerateContent(ctxWithTimeout, messages, options...)
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	// Ollama reports no stop reason through langchaingo; a reply that used the
	// whole num_predict budget was cut off.
	if tokens, ok := resp.Choices[0].GenerationInfo["CompletionTokens"].(int); ok && tokens >= maxTokens {
		return nil, fmt.Errorf("ollama: %w", ErrTruncated)
	}

	return &Response{
		Text:  strings.TrimSpace(resp.Choices[0].Content),
		Model: model,
	}, nil
}
