package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/newslens/internal/chunk"
	"github.com/ppiankov/newslens/internal/classifier"
	"github.com/ppiankov/newslens/internal/factcheck"
	"github.com/ppiankov/newslens/internal/llm"
	"github.com/ppiankov/newslens/internal/llm/llmtest"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/qa"
	"github.com/ppiankov/newslens/internal/transcript"
)

// scripted answers each component by the wording of its system prompt
func scripted(gate string) *llmtest.Provider {
	return &llmtest.Provider{Handler: func(req llm.Request) (string, error) {
		switch {
		case strings.Contains(req.System, "identify the language"):
			return "English", nil
		case strings.Contains(req.System, "summarize one section"):
			return `{"summary": "A flood hit the coast."}`, nil
		case strings.Contains(req.System, "format a summary as HTML"):
			return "<h2>Flood</h2><p>" + strings.TrimSpace(req.Prompt[strings.LastIndex(req.Prompt, "\n")+1:]) + "</p>", nil
		case strings.Contains(req.System, "answer questions"):
			return `{"answer": "The coast."}`, nil
		case strings.Contains(req.System, "date news content"):
			return gate, nil
		case strings.Contains(req.System, "fact-checking analyst"):
			return `{"is_fake": true, "confidence": 0.55, "reasons": ["unsourced"], "suggestions": ["find a second source"]}`, nil
		}
		return "", fmt.Errorf("unexpected system prompt %q", req.System)
	}}
}

type countingClassifier struct {
	name  string
	label model.Label
	calls *atomic.Int32
}

func (c countingClassifier) Name() string { return c.name }

func (c countingClassifier) Predict(context.Context, string) (model.Label, error) {
	c.calls.Add(1)
	return c.label, nil
}

func fourClassifiers(calls *atomic.Int32, labels ...model.Label) *classifier.Registry {
	cs := make([]classifier.Classifier, 0, 4)
	for i, l := range labels {
		cs = append(cs, countingClassifier{name: fmt.Sprintf("c%d", i), label: l, calls: calls})
	}
	return classifier.NewRegistry(cs...)
}

type stubTranscripts struct {
	segments []transcript.Segment
	err      error
	gotID    string
}

func (s *stubTranscripts) Fetch(_ context.Context, id string, _ ...string) ([]transcript.Segment, error) {
	s.gotID = id
	return s.segments, s.err
}

func newService(t *testing.T, p *llmtest.Provider, reg *classifier.Registry, tr Transcripts) *Service {
	t.Helper()
	s, err := New(model.DefaultConfig(), llmtest.NewClient(p), reg, tr)
	require.NoError(t, err)
	return s
}

func TestService_Summarize(t *testing.T) {
	s := newService(t, scripted("yes"), nil, nil)

	res, err := s.Summarize(context.Background(), "A flood hit the coast on Monday.")
	require.NoError(t, err)
	assert.Contains(t, res.HTML, "<h2>Flood</h2>")
	assert.Equal(t, model.LangEnglish, res.Language)
	assert.Len(t, res.Partials, 1)
}

func TestService_SummarizeEmptyIsInputError(t *testing.T) {
	p := scripted("yes")
	s := newService(t, p, nil, nil)

	_, err := s.Summarize(context.Background(), " \n\t")
	require.ErrorIs(t, err, chunk.ErrEmptyInput)
	assert.True(t, IsInputError(err))
	assert.Equal(t, "Empty input text provided", err.Error())
	assert.Empty(t, p.Calls())
}

func TestService_SummarizeVideo(t *testing.T) {
	tr := &stubTranscripts{segments: []transcript.Segment{{Text: "Floods hit"}, {Text: "the coast."}}}
	s := newService(t, scripted("yes"), nil, tr)

	res, err := s.SummarizeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", tr.gotID)
	assert.Equal(t, "dQw4w9WgXcQ", res.VideoID)
	assert.Equal(t, 2, res.Segments)
	assert.NotEmpty(t, res.HTML)
}

func TestService_SummarizeVideoErrors(t *testing.T) {
	tr := &stubTranscripts{}
	s := newService(t, scripted("yes"), nil, tr)

	_, err := s.SummarizeVideo(context.Background(), "not a url")
	assert.True(t, IsInputError(err))
	assert.ErrorIs(t, err, transcript.ErrInvalidURL)

	_, err = s.SummarizeVideo(context.Background(), "https://example.com/watch")
	assert.True(t, IsInputError(err))
	assert.ErrorIs(t, err, transcript.ErrNoVideoID)

	// empty transcript is a processing failure, not an input error
	_, err = s.SummarizeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.ErrorIs(t, err, transcript.ErrNoTranscript)
	assert.False(t, IsInputError(err))

	tr.err = errors.New("connection reset")
	_, err = s.SummarizeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.ErrorContains(t, err, "connection reset")

	_, err = newService(t, scripted("yes"), nil, nil).SummarizeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.ErrorContains(t, err, "not configured")
}

func TestService_Answer(t *testing.T) {
	s := newService(t, scripted("yes"), nil, nil)

	answer, err := s.Answer(context.Background(), "<p>A flood hit the coast.</p>", "Where?")
	require.NoError(t, err)
	assert.Equal(t, "The coast.", answer)

	_, err = s.Answer(context.Background(), "", "Where?")
	assert.ErrorIs(t, err, qa.ErrMissingInput)
	assert.True(t, IsInputError(err))
}

func TestService_DetectFakeNewsIsCalibrated(t *testing.T) {
	s := newService(t, scripted("yes"), nil, nil)

	v, err := s.DetectFakeNews(context.Background(), "Miracle cure found.")
	require.NoError(t, err)
	assert.False(t, v.IsFake)
	assert.InDelta(t, 0.45, v.Confidence, 1e-9)
	assert.Equal(t, []string{factcheck.InsufficientCertaintyReason}, v.Reasons)
	assert.Equal(t, []string{"find a second source"}, v.Suggestions)

	_, err = s.DetectFakeNews(context.Background(), "")
	assert.True(t, IsInputError(err))
}

func TestService_EnsembleCheck(t *testing.T) {
	var calls atomic.Int32
	reg := fourClassifiers(&calls, model.LabelReal, model.LabelFake, model.LabelReal, model.LabelFake)

	res, err := newService(t, scripted("Yes"), reg, nil).EnsembleCheck(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, model.EnsembleReal, res.Label)
	assert.EqualValues(t, 4, calls.Load())

	calls.Store(0)
	res, err = newService(t, scripted("no"), reg, nil).EnsembleCheck(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, model.EnsembleUndetermined, res.Label)
	assert.Zero(t, calls.Load())

	_, err = newService(t, scripted("maybe"), reg, nil).EnsembleCheck(context.Background(), "text")
	assert.ErrorContains(t, err, "Unexpected LLM response")
	assert.False(t, IsInputError(err))
}

func TestService_EnsembleUnavailable(t *testing.T) {
	_, err := newService(t, scripted("yes"), nil, nil).EnsembleCheck(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEnsembleUnavailable)
}

func TestNew_ConfigErrors(t *testing.T) {
	client := llmtest.NewClient(scripted("yes"))

	cfg := model.DefaultConfig()
	cfg.Chunking.Overlap = cfg.Chunking.Size
	_, err := New(cfg, client, nil, nil)
	assert.ErrorContains(t, err, "chunking config")

	cfg = model.DefaultConfig()
	cfg.Language.Strategy = "per-chunk"
	_, err = New(cfg, client, nil, nil)
	assert.Error(t, err)

	var calls atomic.Int32
	_, err = New(model.DefaultConfig(), client, fourClassifiers(&calls, model.LabelReal, model.LabelReal), nil)
	assert.ErrorContains(t, err, "needs 4 classifiers")
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(&InputError{Err: errors.New("bad")}))
	assert.True(t, IsInputError(fmt.Errorf("wrapped: %w", chunk.ErrEmptyInput)))
	assert.False(t, IsInputError(errors.New("upstream 500")))
	assert.False(t, IsInputError(nil))
}
