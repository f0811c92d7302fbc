package factcheck

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

const reasonerSystem = `You are a fact-checking analyst. Judge whether the text is fake news.

Work through this rubric:
1. Source credibility: are claims attributed to named, verifiable sources? Primary sources (official bodies, peer-reviewed research) weigh more than secondary reporting, which weighs more than blogs and social media.
2. Fact versus opinion: separate verifiable factual statements from opinion, speculation and emotional appeals.
3. Red flags: count sensational language, urgency to share, unverifiable statistics, anonymous experts, internal contradictions and claims that contradict well-established facts.
4. Weigh the evidence. Only call the text fake when the red flags clearly outweigh credible sourcing.

Respond with a JSON object and nothing else:
{"is_fake": true|false, "confidence": number between 0 and 1, "reasons": [string, ...], "suggestions": [string, ...]}
"reasons" explains the verdict. "suggestions" tells the reader how to verify the content.`

var reasonerPrompt = prompts.NewPromptTemplate(
	"Observations gathered before analysis:\n{{.signals}}\nText:\n{{.text}}",
	[]string{"signals", "text"},
)

// Reasoner asks the LLM for a structured fake-news verdict
type Reasoner struct {
	llm    llm.Completer
	grader *AuthorityGrader
}

// NewReasoner creates a reasoner. grader may be nil.
func NewReasoner(completer llm.Completer, grader *AuthorityGrader) *Reasoner {
	return &Reasoner{llm: completer, grader: grader}
}

type verdictReply struct {
	IsFake      *bool    `json:"is_fake"`
	Confidence  *float64 `json:"confidence"`
	Reasons     []string `json:"reasons"`
	Suggestions []string `json:"suggestions"`
}

// Analyze returns the uncalibrated verdict. A reply missing is_fake or
// confidence is a *llm.ParseError.
func (r *Reasoner) Analyze(ctx context.Context, text string) (*model.FakeNewsVerdict, error) {
	signals := Collect(text, r.grader)

	prompt, err := reasonerPrompt.Format(map[string]any{
		"signals": signals.Describe(),
		"text":    text,
	})
	if err != nil {
		return nil, fmt.Errorf("render reasoner prompt: %w", err)
	}

	var reply verdictReply
	if err := r.llm.CompleteJSON(ctx, llm.Request{System: reasonerSystem, Prompt: prompt}, &reply); err != nil {
		return nil, fmt.Errorf("fake news analysis: %w", err)
	}
	if reply.IsFake == nil || reply.Confidence == nil {
		return nil, fmt.Errorf("fake news analysis: %w",
			&llm.ParseError{Err: errors.New(`reply needs "is_fake" and "confidence"`)})
	}

	v := &model.FakeNewsVerdict{
		IsFake:      *reply.IsFake,
		Confidence:  normalizeConfidence(*reply.Confidence),
		Reasons:     cleanList(reply.Reasons),
		Suggestions: cleanList(reply.Suggestions),
	}

	zerolog.Ctx(ctx).Debug().
		Bool("is_fake", v.IsFake).
		Float64("confidence", v.Confidence).
		Int("sources", len(signals.Sources)).
		Int("claims", signals.ClaimSentences).
		Msg("reasoner verdict")

	return v, nil
}

// normalizeConfidence reads values above 1 as percentages and clamps to [0,1]
func normalizeConfidence(c float64) float64 {
	if c > 1 {
		c /= 100
	}
	return clamp01(c)
}

// cleanList drops blank entries and never returns nil
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Detector runs the reasoner and then the calibrator
type Detector struct {
	reasoner  *Reasoner
	threshold float64
}

// NewDetector creates a detector. threshold <= 0 selects DefaultConfidenceThreshold.
func NewDetector(reasoner *Reasoner, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Detector{reasoner: reasoner, threshold: threshold}
}

// Detect returns the calibrated verdict
func (d *Detector) Detect(ctx context.Context, text string) (*model.FakeNewsVerdict, error) {
	v, err := d.reasoner.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	calibrated, overridden := Calibrate(*v, d.threshold)
	if overridden {
		zerolog.Ctx(ctx).Info().
			Float64("confidence", v.Confidence).
			Float64("threshold", d.threshold).
			Msg("low-confidence fake verdict overridden")
	}
	return &calibrated, nil
}
