package factcheck

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/newslens/internal/llm"
	"github.com/ppiankov/newslens/internal/llm/llmtest"
	"github.com/ppiankov/newslens/internal/model"
)

func TestReasoner_Analyze(t *testing.T) {
	p := &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		assert.True(t, req.JSON)
		assert.Equal(t, reasonerSystem, req.System)
		assert.Contains(t, req.Prompt, "https://www.who.int/news/item/1 (primary)")
		assert.Contains(t, req.Prompt, "Text:\nAccording to")
		return "```json\n" + `{"is_fake": false, "confidence": 0.9, "reasons": ["cites WHO", " "], "suggestions": ["read the WHO note"]}` + "\n```", nil
	}}

	r := NewReasoner(llmtest.NewClient(p), NewAuthorityGrader(model.DefaultConfig().Authority))
	v, err := r.Analyze(context.Background(),
		"According to the WHO, vaccination rates rose last year. See https://www.who.int/news/item/1.")
	require.NoError(t, err)

	assert.False(t, v.IsFake)
	assert.InDelta(t, 0.9, v.Confidence, 1e-9)
	assert.Equal(t, []string{"cites WHO"}, v.Reasons)
	assert.Equal(t, []string{"read the WHO note"}, v.Suggestions)
}

func TestReasoner_ConfidenceNormalized(t *testing.T) {
	tests := map[string]float64{
		`{"is_fake": true, "confidence": 85}`:   0.85,
		`{"is_fake": true, "confidence": -0.2}`: 0,
		`{"is_fake": true, "confidence": 250}`:  1,
		`{"is_fake": true, "confidence": 1}`:    1,
	}
	for raw, want := range tests {
		v, err := NewReasoner(llmtest.NewClient(llmtest.Static(raw)), nil).Analyze(context.Background(), "t")
		require.NoError(t, err, raw)
		assert.InDelta(t, want, v.Confidence, 1e-9, raw)
		assert.NotNil(t, v.Reasons)
		assert.NotNil(t, v.Suggestions)
	}
}

func TestReasoner_InvalidReply(t *testing.T) {
	for _, raw := range []string{"It looks fake to me", `{"confidence": 0.5}`, `{"is_fake": true}`} {
		p := llmtest.Static(raw)
		_, err := NewReasoner(llmtest.NewClient(p), nil).Analyze(context.Background(), "t")

		var parseErr *llm.ParseError
		require.True(t, errors.As(err, &parseErr), "raw %q: %v", raw, err)
		assert.Len(t, p.Calls(), 1)
	}
}

func TestDetector_CalibratesVerdict(t *testing.T) {
	p := llmtest.Static(`{"is_fake": true, "confidence": 0.6, "reasons": ["no sources"], "suggestions": ["search for coverage"]}`)

	v, err := NewDetector(NewReasoner(llmtest.NewClient(p), nil), 0).Detect(context.Background(), "text")
	require.NoError(t, err)

	assert.False(t, v.IsFake)
	assert.InDelta(t, 0.4, v.Confidence, 1e-9)
	assert.Equal(t, []string{InsufficientCertaintyReason}, v.Reasons)
	assert.Equal(t, []string{"search for coverage"}, v.Suggestions)
}

func TestDetector_ConfidentFakeStands(t *testing.T) {
	p := llmtest.Static(`{"is_fake": true, "confidence": 0.92, "reasons": ["fabricated quote"], "suggestions": []}`)

	v, err := NewDetector(NewReasoner(llmtest.NewClient(p), nil), 0.8).Detect(context.Background(), "text")
	require.NoError(t, err)

	assert.True(t, v.IsFake)
	assert.InDelta(t, 0.92, v.Confidence, 1e-9)
	assert.Equal(t, []string{"fabricated quote"}, v.Reasons)
}
