package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/newslens/internal/chunk"
	"github.com/ppiankov/newslens/internal/language"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/worker"
)

// Result is the outcome of one summarization request
type Result struct {
	HTML     string                 `json:"html"`
	Language model.Language         `json:"language"`
	Partials []model.PartialSummary `json:"partials"`
	Warnings []string               `json:"warnings,omitempty"`
}

// Degraded counts chunks that fell back to their prefix
func (r *Result) Degraded() int {
	n := 0
	for _, p := range r.Partials {
		if p.Degraded() {
			n++
		}
	}
	return n
}

// Pipeline runs router, chunker, map, combine and format in that order
type Pipeline struct {
	router      *language.Router
	chunking    chunk.Config
	summarizer  *ChunkSummarizer
	formatter   *Formatter
	concurrency int
	onChunk     func(model.PartialSummary)
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithConcurrency bounds the number of chunk summaries in flight
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = n
	}
}

// WithChunkHook registers a callback for every finished chunk. It may be
// called from several goroutines at once.
func WithChunkHook(fn func(model.PartialSummary)) Option {
	return func(p *Pipeline) {
		p.onChunk = fn
	}
}

// NewPipeline assembles a pipeline
func NewPipeline(router *language.Router, chunking chunk.Config, summarizer *ChunkSummarizer, formatter *Formatter, opts ...Option) *Pipeline {
	p := &Pipeline{
		router:      router,
		chunking:    chunking,
		summarizer:  summarizer,
		formatter:   formatter,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run summarizes text. Empty input fails before any LLM call; individual
// chunk failures degrade instead of failing the request; a cancelled ctx
// fails the whole request.
func (p *Pipeline) Run(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, chunk.ErrEmptyInput
	}
	if err := p.chunking.Validate(); err != nil {
		return nil, fmt.Errorf("chunking config: %w", err)
	}

	doc, err := p.router.Route(ctx, text)
	if err != nil {
		return nil, err
	}

	chunks, err := chunk.Split(doc.Text, p.chunking)
	if err != nil {
		return nil, err
	}

	log := zerolog.Ctx(ctx)
	log.Debug().Int("chunks", len(chunks)).Str("language", string(doc.Language)).Msg("document split")

	partials := make([]model.PartialSummary, len(chunks))
	err = worker.Fanout(ctx, len(chunks), p.concurrency, func(ctx context.Context, idx int) {
		partials[idx] = p.summarizer.Summarize(ctx, chunks[idx])
		if p.onChunk != nil {
			p.onChunk(partials[idx])
		}
	})
	if err != nil {
		return nil, err
	}

	combined, err := Combine(partials)
	if err != nil {
		return nil, err
	}

	formatted, err := p.formatter.Format(ctx, combined)
	if err != nil {
		return nil, err
	}

	result := &Result{
		HTML:     formatted.HTML,
		Language: doc.Language,
		Partials: partials,
		Warnings: formatted.Warnings,
	}

	if n := result.Degraded(); n > 0 {
		log.Warn().Int("degraded", n).Int("chunks", len(chunks)).Msg("summary built with degraded chunks")
	}

	return result, nil
}
