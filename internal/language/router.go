// Package language detects the input language and translates Hindi to
// English before summarization.
package language

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/prompts"

	"github.com/ppiankov/newslens/internal/llm"
	"github.com/ppiankov/newslens/internal/model"
)

// Strategy selects how detection is applied
type Strategy string

const (
	// StrategyWhole detects once on the full document. Mixed-language
	// documents get a single tag.
	StrategyWhole Strategy = "whole"
	// StrategyOff skips detection and translation
	StrategyOff Strategy = "off"
)

// ParseStrategy accepts "whole", "off" or empty (whole)
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyWhole:
		return StrategyWhole, nil
	case StrategyOff:
		return StrategyOff, nil
	}
	return "", fmt.Errorf("unknown language strategy %q (supported: whole, off)", s)
}

const (
	detectSystem    = "You identify the language of a text. Reply with the name of the language only, in English, as one word."
	translateSystem = "You translate Hindi text into English. Reply with the translation only, without commentary."
)

var (
	detectPrompt = prompts.NewPromptTemplate(
		"Which language is the following text written in?\n\n{{.text}}",
		[]string{"text"},
	)
	translatePrompt = prompts.NewPromptTemplate(
		"Translate the following text into English:\n\n{{.text}}",
		[]string{"text"},
	)
)

// ErrEmptyTranslation is returned when translation yields no text
var ErrEmptyTranslation = errors.New("translation returned no text")

// Router tags documents and translates Hindi ones
type Router struct {
	llm      llm.Completer
	strategy Strategy
}

// NewRouter creates a router
func NewRouter(completer llm.Completer, strategy Strategy) *Router {
	if strategy == "" {
		strategy = StrategyWhole
	}
	return &Router{llm: completer, strategy: strategy}
}

// Classify maps a detector reply onto a language tag. "hindi" wins over
// "english" when a reply mentions both.
func Classify(reply string) model.Language {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "hindi"):
		return model.LangHindi
	case strings.Contains(lower, "english"):
		return model.LangEnglish
	default:
		return model.LangOther
	}
}

// Detect asks the LLM for the document language
func (r *Router) Detect(ctx context.Context, text string) (model.Language, error) {
	prompt, err := detectPrompt.Format(map[string]any{"text": text})
	if err != nil {
		return "", fmt.Errorf("render detect prompt: %w", err)
	}

	reply, err := r.llm.Complete(ctx, llm.Request{System: detectSystem, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}

	return Classify(reply), nil
}

// Translate renders Hindi text in English
func (r *Router) Translate(ctx context.Context, text string) (string, error) {
	prompt, err := translatePrompt.Format(map[string]any{"text": text})
	if err != nil {
		return "", fmt.Errorf("render translate prompt: %w", err)
	}

	reply, err := r.llm.Complete(ctx, llm.Request{System: translateSystem, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}

	translated := llm.StripFences(reply)
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	return translated, nil
}

// Route returns the document to summarize. Only Hindi input is rewritten.
func (r *Router) Route(ctx context.Context, text string) (*model.Document, error) {
	if r.strategy == StrategyOff {
		return &model.Document{Text: text, Language: model.LangOther}, nil
	}

	lang, err := r.Detect(ctx, text)
	if err != nil {
		return nil, err
	}

	log := zerolog.Ctx(ctx)
	log.Debug().Str("language", string(lang)).Msg("language detected")

	if lang != model.LangHindi {
		return &model.Document{Text: text, Language: lang}, nil
	}

	translated, err := r.Translate(ctx, text)
	if err != nil {
		return nil, err
	}
	log.Info().Int("chars", len([]rune(translated))).Msg("translated hindi input")

	return &model.Document{Text: translated, Language: model.LangHindi, Translated: true}, nil
}
