package language

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
)

func TestClassify(t *testing.T) {
	tests := map[string]model.Language{
		"Hindi":                      model.LangHindi,
		"The text is in HINDI.":      model.LangHindi,
		"english":                    model.LangEnglish,
		"English (with some Hindi)":  model.LangHindi,
		"Marathi":                    model.LangOther,
		"":                           model.LangOther,
	}

	for reply, want := range tests {
		assert.Equal(t, want, Classify(reply), "reply %q", reply)
	}
}

func TestRouter_Route_English(t *testing.T) {
	p := &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		if req.System == detectSystem {
			assert.Contains(t, req.Prompt, "The election results")
			return "English", nil
		}
		t.Errorf("unexpected call: %s", req.System)
		return "", nil
	}}

	doc, err := NewRouter(llmtest.NewClient(p), StrategyWhole).Route(context.Background(), "The election results were announced.")
	require.NoError(t, err)

	assert.Equal(t, model.LangEnglish, doc.Language)
	assert.Equal(t, "The election results were announced.", doc.Text)
	assert.False(t, doc.Translated)
	assert.Len(t, p.Calls(), 1)
}

func TestRouter_Route_HindiIsTranslated(t *testing.T) {
	p := &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		switch req.System {
		case detectSystem:
			return "hindi", nil
		case translateSystem:
			return "The monsoon arrived early this year.", nil
		}
		return "", errors.New("unexpected")
	}}

	doc, err := NewRouter(llmtest.NewClient(p), StrategyWhole).Route(context.Background(), "इस साल मानसून जल्दी आया।")
	require.NoError(t, err)

	assert.Equal(t, model.LangHindi, doc.Language)
	assert.Equal(t, "The monsoon arrived early this year.", doc.Text)
	assert.True(t, doc.Translated)
	assert.Equal(t, 1, p.Count("translate Hindi"))
}

func TestRouter_Route_OtherPassesThrough(t *testing.T) {
	p := llmtest.Static("French")

	doc, err := NewRouter(llmtest.NewClient(p), StrategyWhole).Route(context.Background(), "Bonjour")
	require.NoError(t, err)

	assert.Equal(t, model.LangOther, doc.Language)
	assert.Equal(t, "Bonjour", doc.Text)
}

func TestRouter_Route_StrategyOff(t *testing.T) {
	p := llmtest.Static("hindi")

	doc, err := NewRouter(llmtest.NewClient(p), StrategyOff).Route(context.Background(), "नमस्ते")
	require.NoError(t, err)

	assert.Equal(t, model.LangOther, doc.Language)
	assert.Equal(t, "नमस्ते", doc.Text)
	assert.Empty(t, p.Calls())
}

func TestRouter_Route_EmptyTranslation(t *testing.T) {
	p := &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		if req.System == detectSystem {
			return "Hindi", nil
		}
		return "   ", nil
	}}

	_, err := NewRouter(llmtest.NewClient(p), StrategyWhole).Route(context.Background(), "नमस्ते")
	assert.ErrorIs(t, err, ErrEmptyTranslation)
}

func TestRouter_Detect_UpstreamError(t *testing.T) {
	p := &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		return "", errors.New("connection reset by peer")
	}}

	_, err := NewRouter(llmtest.NewClient(p), StrategyWhole).Detect(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "detect language"))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyWhole, s)

	s, err = ParseStrategy("OFF")
	require.NoError(t, err)
	assert.Equal(t, StrategyOff, s)

	_, err = ParseStrategy("per-chunk")
	assert.Error(t, err)
}
