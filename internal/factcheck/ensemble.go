package factcheck

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ppiankov/newslens/internal/classifier"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/worker"
)

// EnsembleSize is the number of classifiers the vote is defined over
const EnsembleSize = 4

// Decide applies the majority rule: Real iff at least two votes are real.
// A 2-2 split is therefore Real.
func Decide(labels []model.Label) model.EnsembleLabel {
	reals := 0
	for _, l := range labels {
		if l == model.LabelReal {
			reals++
		}
	}
	if reals >= 2 {
		return model.EnsembleReal
	}
	return model.EnsembleFake
}

// Voter runs the four classifiers concurrently
type Voter struct {
	classifiers []classifier.Classifier
}

// NewVoter requires exactly EnsembleSize classifiers
func NewVoter(reg *classifier.Registry) (*Voter, error) {
	if reg.Len() != EnsembleSize {
		return nil, fmt.Errorf("ensemble needs %d classifiers, got %d", EnsembleSize, reg.Len())
	}
	return &Voter{classifiers: reg.All()}, nil
}

// Vote collects one label per classifier and applies Decide. Any
// classifier error fails the vote.
func (v *Voter) Vote(ctx context.Context, text string) (model.EnsembleLabel, []model.Vote, error) {
	votes := make([]model.Vote, len(v.classifiers))
	errs := make([]error, len(v.classifiers))

	err := worker.Fanout(ctx, len(v.classifiers), len(v.classifiers), func(ctx context.Context, i int) {
		c := v.classifiers[i]
		label, err := c.Predict(ctx, text)
		if err != nil {
			errs[i] = fmt.Errorf("classifier %s: %w", c.Name(), err)
			return
		}
		votes[i] = model.Vote{Classifier: c.Name(), Label: label}
	})
	if err != nil {
		return "", nil, err
	}
	for _, err := range errs {
		if err != nil {
			return "", nil, err
		}
	}

	labels := make([]model.Label, len(votes))
	for i, vote := range votes {
		labels[i] = vote.Label
	}
	result := Decide(labels)

	log := zerolog.Ctx(ctx).Debug()
	for _, vote := range votes {
		log = log.Str(vote.Classifier, string(vote.Label))
	}
	log.Str("result", string(result)).Msg("ensemble vote")

	return result, votes, nil
}

// EnsembleResult is the outcome of the gated ensemble path
type EnsembleResult struct {
	Label           model.EnsembleLabel `json:"result"`
	Votes           []model.Vote        `json:"votes,omitempty"`
	InReferenceYear bool                `json:"in_reference_year"`
}

// EnsembleChecker runs the temporal gate and, only if it passes, the voter
type EnsembleChecker struct {
	gate  *TemporalGate
	voter *Voter
}

// NewEnsembleChecker wires a gate in front of a voter
func NewEnsembleChecker(gate *TemporalGate, voter *Voter) *EnsembleChecker {
	return &EnsembleChecker{gate: gate, voter: voter}
}

// Check returns EnsembleUndetermined without consulting any classifier
// when the content is not from the reference year.
func (c *EnsembleChecker) Check(ctx context.Context, text string) (*EnsembleResult, error) {
	inYear, err := c.gate.Check(ctx, text)
	if err != nil {
		return nil, err
	}
	if !inYear {
		return &EnsembleResult{Label: model.EnsembleUndetermined}, nil
	}

	label, votes, err := c.voter.Vote(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ensemble vote: %w", err)
	}
	return &EnsembleResult{Label: label, Votes: votes, InReferenceYear: true}, nil
}
