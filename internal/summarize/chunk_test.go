package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/newslens/internal/llm"
	"github.com/ppiankov/newslens/internal/llm/llmtest"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/retry"
)

func TestChunkSummarizer_Parsed(t *testing.T) {
	p := &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		assert.True(t, req.JSON)
		assert.Equal(t, chunkSystem, req.System)
		assert.Contains(t, req.Prompt, "Parliament passed the bill.")
		return `{"summary": "Bill passed."}`, nil
	}}

	s := NewChunkSummarizer(llmtest.NewClient(p), 500)
	got := s.Summarize(context.Background(), model.Chunk{Index: 3, Text: "Parliament passed the bill."})

	assert.Equal(t, model.OutcomeParsed, got.Outcome)
	assert.Equal(t, 3, got.Index)
	assert.Equal(t, "Bill passed.", got.Text)
	assert.Empty(t, got.Reason)
}

func TestChunkSummarizer_DegradesOnParseError(t *testing.T) {
	text := strings.Repeat("x", 700)
	p := llmtest.Static("this is not json")

	got := NewChunkSummarizer(llmtest.NewClient(p), 500).Summarize(context.Background(), model.Chunk{Index: 1, Text: text})

	assert.Equal(t, model.OutcomeDegraded, got.Outcome)
	assert.True(t, got.Degraded())
	assert.Equal(t, strings.Repeat("x", 500)+"...", got.Text)
	assert.NotEmpty(t, got.Reason)
	assert.Len(t, p.Calls(), 1)
}

func TestChunkSummarizer_DegradesOnMissingField(t *testing.T) {
	for _, raw := range []string{`{"text": "wrong key"}`, `{"summary": "  "}`} {
		got := NewChunkSummarizer(llmtest.NewClient(llmtest.Static(raw)), 500).
			Summarize(context.Background(), model.Chunk{Text: "short"})

		assert.Equal(t, model.OutcomeDegraded, got.Outcome, raw)
		assert.Equal(t, "short...", got.Text)
	}
}

func TestChunkSummarizer_RetriesTransientBeforeDegrading(t *testing.T) {
	calls := 0
	p := &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		calls++
		if calls < 3 {
			return "", &retry.StatusError{Service: "fake", StatusCode: 502}
		}
		return `{"summary": "recovered"}`, nil
	}}

	got := NewChunkSummarizer(llmtest.NewClient(p), 500).Summarize(context.Background(), model.Chunk{Text: "body"})

	assert.Equal(t, model.OutcomeParsed, got.Outcome)
	assert.Equal(t, "recovered", got.Text)
	assert.Equal(t, 3, calls)
}

func TestChunkSummarizer_DegradesWhenRetriesExhausted(t *testing.T) {
	p := &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		return "", errors.New("upstream exploded")
	}}

	got := NewChunkSummarizer(llmtest.NewClient(p), 4).Summarize(context.Background(), model.Chunk{Text: "abcdefgh"})

	assert.Equal(t, model.OutcomeDegraded, got.Outcome)
	assert.Equal(t, "abcd...", got.Text)
	assert.Contains(t, got.Reason, "upstream exploded")
}

func TestDegrade(t *testing.T) {
	assert.Equal(t, "abc...", Degrade("abc", 500))
	assert.Equal(t, "ab...", Degrade("abc", 2))
	assert.Equal(t, "नम...", Degrade("नमस्ते", 2))
	assert.Equal(t, "...", Degrade("", 10))
}

func TestCombine(t *testing.T) {
	got, err := Combine([]model.PartialSummary{
		{Index: 2, Text: "third"},
		{Index: 0, Text: "first"},
		{Index: 1, Text: "second", Outcome: model.OutcomeDegraded},
	})
	require.NoError(t, err)
	assert.Equal(t, "first second third", got)
}

func TestCombine_Empty(t *testing.T) {
	_, err := Combine(nil)
	assert.Error(t, err)
}
