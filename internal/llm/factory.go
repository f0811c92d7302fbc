package llm

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint
const GroqBaseURL = "https://api.groq.com/openai/v1"

// ErrNoProvider is returned when no LLM backend is configured
var ErrNoProvider = errors.New("no LLM provider configured")

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "groq":
		if config.BaseURL == "" {
			config.BaseURL = GroqBaseURL
		}
		return newOpenAICompatible("groq", config)

	case "openai":
		return newOpenAICompatible("openai", config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, ErrNoProvider

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: groq, openai, anthropic, ollama)", config.Provider)
	}
}

// APIKeyEnv names the environment variable that conventionally holds
// the key for a provider
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "groq":
		return "GROQ_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// ResolveEnv fills APIKey and, for ollama, BaseURL from the conventional
// environment variables when the config leaves them empty
func ResolveEnv(config Config) Config {
	if config.APIKey == "" {
		if name := APIKeyEnv(config.Provider); name != "" {
			config.APIKey = os.Getenv(name)
		}
	}
	if strings.EqualFold(config.Provider, "ollama") && config.BaseURL == "" {
		config.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return config
}
