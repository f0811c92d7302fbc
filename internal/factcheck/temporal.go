// Package factcheck produces fake-news verdicts: a temporal gate in front
// of a classifier ensemble, and an LLM reasoner followed by a calibrator.
package factcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/prompts"

	"github.com/ppiankov/newslens/internal/llm"
)

// DefaultReferenceYear is the year the ensemble's training data comes from
const DefaultReferenceYear = 2019

const gateSystem = "You date news content. Answer in one word: 'Yes' or 'No'."

var gatePrompt = prompts.NewPromptTemplate(
	"Is the following text or video content from the year {{.year}}?\n\n{{.text}}",
	[]string{"year", "text"},
)

// AmbiguousClassificationError is returned when the gate reply is neither yes nor no
type AmbiguousClassificationError struct {
	Response string
}

func (e *AmbiguousClassificationError) Error() string {
	return fmt.Sprintf("Unexpected LLM response: %q", e.Response)
}

// TemporalGate asks whether content originates from the reference year
type TemporalGate struct {
	llm  llm.Completer
	year int
}

// NewTemporalGate creates a gate. year <= 0 selects DefaultReferenceYear.
func NewTemporalGate(completer llm.Completer, year int) *TemporalGate {
	if year <= 0 {
		year = DefaultReferenceYear
	}
	return &TemporalGate{llm: completer, year: year}
}

// Year returns the reference year
func (g *TemporalGate) Year() int { return g.year }

// Check returns true for "yes" and false for "no". Any other reply is an
// *AmbiguousClassificationError.
func (g *TemporalGate) Check(ctx context.Context, text string) (bool, error) {
	prompt, err := gatePrompt.Format(map[string]any{"year": g.year, "text": text})
	if err != nil {
		return false, fmt.Errorf("render gate prompt: %w", err)
	}

	reply, err := g.llm.Complete(ctx, llm.Request{System: gateSystem, Prompt: prompt, MaxTokens: 8})
	if err != nil {
		return false, fmt.Errorf("temporal gate: %w", err)
	}

	switch normalizeAnswer(reply) {
	case "yes":
		return true, nil
	case "no":
		zerolog.Ctx(ctx).Debug().Int("year", g.year).Msg("content outside reference year")
		return false, nil
	}
	return false, &AmbiguousClassificationError{Response: reply}
}

// normalizeAnswer lower-cases and strips surrounding quotes and punctuation
func normalizeAnswer(reply string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(reply)), ".!?,;:'\"` \n")
}
