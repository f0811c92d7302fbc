// Package summarize implements the map-reduce summarization pipeline.
package summarize

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

// DegradeMarker is appended to the prefix used for a degraded chunk
const DegradeMarker = "..."

const chunkSystem = "You summarize one section of a longer document. " +
	"Keep names, numbers and dates. " +
	`Respond with a JSON object with exactly one field: {"summary": "..."}.`

var chunkPrompt = prompts.NewPromptTemplate(
	"Summarize the following section concisely:\n\n{{.text}}",
	[]string{"text"},
)

var errMissingSummary = errors.New(`missing "summary" field`)

// ChunkSummarizer produces one partial summary per chunk
type ChunkSummarizer struct {
	llm          llm.Completer
	degradeChars int
}

// NewChunkSummarizer creates a summarizer. degradeChars is the prefix
// length, in runes, used when a chunk cannot be summarized.
func NewChunkSummarizer(completer llm.Completer, degradeChars int) *ChunkSummarizer {
	if degradeChars <= 0 {
		degradeChars = 500
	}
	return &ChunkSummarizer{llm: completer, degradeChars: degradeChars}
}

// Summarize never fails: any upstream or parse error yields a degraded
// summary built from the chunk prefix.
func (s *ChunkSummarizer) Summarize(ctx context.Context, c model.Chunk) model.PartialSummary {
	text, err := s.summarize(ctx, c)
	if err == nil {
		return model.PartialSummary{Index: c.Index, Text: text, Outcome: model.OutcomeParsed}
	}

	zerolog.Ctx(ctx).Warn().
		Int("chunk", c.Index).
		Str("outcome", model.OutcomeDegraded.String()).
		Err(err).
		Msg("chunk summary degraded")

	return model.PartialSummary{
		Index:   c.Index,
		Text:    Degrade(c.Text, s.degradeChars),
		Outcome: model.OutcomeDegraded,
		Reason:  err.Error(),
	}
}

func (s *ChunkSummarizer) summarize(ctx context.Context, c model.Chunk) (string, error) {
	prompt, err := chunkPrompt.Format(map[string]any{"text": c.Text})
	if err != nil {
		return "", fmt.Errorf("render chunk prompt: %w", err)
	}

	var reply struct {
		Summary string `json:"summary"`
	}
	if err := s.llm.CompleteJSON(ctx, llm.Request{System: chunkSystem, Prompt: prompt}, &reply); err != nil {
		return "", err
	}

	summary := strings.TrimSpace(reply.Summary)
	if summary == "" {
		return "", &llm.ParseError{Err: errMissingSummary}
	}
	return summary, nil
}

// Degrade returns the first n runes of text followed by DegradeMarker
func Degrade(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + DegradeMarker
}
