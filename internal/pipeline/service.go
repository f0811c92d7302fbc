// Package pipeline wires the analysis components into the operations
// exposed by the HTTP server and the CLI.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/newslens/internal/chunk"
	"github.com/ppiankov/newslens/internal/classifier"
	"github.com/ppiankov/newslens/internal/factcheck"
	"github.com/ppiankov/newslens/internal/language"
	"github.com/ppiankov/newslens/internal/llm"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/qa"
	"github.com/ppiankov/newslens/internal/summarize"
	"github.com/ppiankov/newslens/internal/transcript"
)

// ErrEnsembleUnavailable is returned by EnsembleCheck when no classifiers are configured
var ErrEnsembleUnavailable = errors.New("ensemble check unavailable: no classifiers configured")

// InputError marks a request that was rejected before any work started
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// IsInputError reports whether err is a caller mistake rather than a
// processing failure
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie) ||
		errors.Is(err, chunk.ErrEmptyInput) ||
		errors.Is(err, qa.ErrMissingInput) ||
		errors.Is(err, transcript.ErrInvalidURL) ||
		errors.Is(err, transcript.ErrNoVideoID)
}

// Transcripts fetches caption segments for a video id
type Transcripts interface {
	Fetch(ctx context.Context, videoID string, languages ...string) ([]transcript.Segment, error)
}

// Service runs the summarization, question answering and fake-news operations
type Service struct {
	summarizer  *summarize.Pipeline
	answerer    *qa.Answerer
	detector    *factcheck.Detector
	ensemble    *factcheck.EnsembleChecker
	transcripts Transcripts
}

// New assembles a Service. An empty registry disables EnsembleCheck; any
// other size than four is a configuration error. transcripts may be nil,
// which disables SummarizeVideo.
func New(cfg model.Config, completer llm.Completer, registry *classifier.Registry, transcripts Transcripts) (*Service, error) {
	strategy, err := language.ParseStrategy(cfg.Language.Strategy)
	if err != nil {
		return nil, err
	}

	chunking := chunk.Config{Size: cfg.Chunking.Size, Overlap: cfg.Chunking.Overlap}
	if err := chunking.Validate(); err != nil {
		return nil, fmt.Errorf("chunking config: %w", err)
	}

	s := &Service{
		summarizer: summarize.NewPipeline(
			language.NewRouter(completer, strategy),
			chunking,
			summarize.NewChunkSummarizer(completer, cfg.Chunking.DegradeChars),
			summarize.NewFormatter(completer),
			summarize.WithConcurrency(cfg.Chunking.Concurrency),
		),
		answerer: qa.NewAnswerer(completer),
		detector: factcheck.NewDetector(
			factcheck.NewReasoner(completer, factcheck.NewAuthorityGrader(cfg.Authority)),
			cfg.FactCheck.ConfidenceThreshold,
		),
		transcripts: transcripts,
	}

	if registry.Len() > 0 {
		voter, err := factcheck.NewVoter(registry)
		if err != nil {
			return nil, err
		}
		gate := factcheck.NewTemporalGate(completer, cfg.FactCheck.ReferenceYear)
		s.ensemble = factcheck.NewEnsembleChecker(gate, voter)
	}

	return s, nil
}

// Summarize turns text into an HTML summary
func (s *Service) Summarize(ctx context.Context, text string) (*summarize.Result, error) {
	return s.summarizer.Run(ctx, text)
}

// VideoSummary is the summary of a video transcript
type VideoSummary struct {
	*summarize.Result
	VideoID  string `json:"video_id"`
	Segments int    `json:"segments"`
}

// SummarizeVideo fetches the transcript of a video URL and summarizes it
func (s *Service) SummarizeVideo(ctx context.Context, videoURL string) (*VideoSummary, error) {
	id, err := transcript.ParseVideoURL(videoURL)
	if err != nil {
		return nil, &InputError{Err: err}
	}
	if s.transcripts == nil {
		return nil, errors.New("video transcripts are not configured")
	}

	segments, err := s.transcripts.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}
	text := transcript.Join(segments)
	if text == "" {
		return nil, fmt.Errorf("transcript: %w", transcript.ErrNoTranscript)
	}

	zerolog.Ctx(ctx).Debug().Str("video", id).Int("segments", len(segments)).Msg("summarizing transcript")

	result, err := s.Summarize(ctx, text)
	if err != nil {
		return nil, err
	}
	return &VideoSummary{Result: result, VideoID: id, Segments: len(segments)}, nil
}

// Answer answers a question about a summary
func (s *Service) Answer(ctx context.Context, summary, question string) (string, error) {
	return s.answerer.Answer(ctx, summary, question)
}

// DetectFakeNews runs the reasoner and the calibrator
func (s *Service) DetectFakeNews(ctx context.Context, text string) (*model.FakeNewsVerdict, error) {
	if strings.TrimSpace(text) == "" {
		return nil, chunk.ErrEmptyInput
	}
	return s.detector.Detect(ctx, text)
}

// EnsembleCheck runs the temporal gate and, if it passes, the classifier vote
func (s *Service) EnsembleCheck(ctx context.Context, text string) (*factcheck.EnsembleResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, chunk.ErrEmptyInput
	}
	if s.ensemble == nil {
		return nil, ErrEnsembleUnavailable
	}
	return s.ensemble.Check(ctx, text)
}
