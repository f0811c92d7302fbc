package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/newslens/internal/util"
)

// OpenAIProvider talks to OpenAI or any OpenAI-compatible endpoint (Groq)
type OpenAIProvider struct {
	name   string
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a provider for api.openai.com or config.BaseURL
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	return newOpenAICompatible("openai", config)
}

func newOpenAICompatible(name string, config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIProvider{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable lists models as a lightweight credential check
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("provider", p.name).Err(err).Msg("API check failed")
		return false
	}
	return true
}

// Complete runs one chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.config.model(req, openai.GPT4oMini)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   p.config.maxTokens(req),
		Temperature: float32(p.config.Temperature),
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		return nil, fmt.Errorf("%s: %w", p.name, ErrTruncated)
	}

	return &Response{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
