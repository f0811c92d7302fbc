package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ppiankov/newslens/internal/model"
)

const defaultTokenPattern = `[\p{L}\p{N}]{2,}`

// LinearArtifact is the on-disk form of a bag-of-words linear model.
// Score = Bias + sum(Weights[token] * count(token)); a score above
// Threshold yields PositiveLabel, otherwise NegativeLabel.
type LinearArtifact struct {
	Name          string             `json:"name"`
	Weights       map[string]float64 `json:"weights"`
	Bias          float64            `json:"bias"`
	Threshold     float64            `json:"threshold"`
	PositiveLabel string             `json:"positive_label"`
	NegativeLabel string             `json:"negative_label"`
	Lowercase     bool               `json:"lowercase"`
	TokenPattern  string             `json:"token_pattern,omitempty"`
	// Binary counts each token at most once
	Binary bool `json:"binary,omitempty"`
}

// Linear evaluates a LinearArtifact in-process. It is immutable after load.
type Linear struct {
	name     string
	artifact LinearArtifact
	token    *regexp.Regexp
	positive model.Label
	negative model.Label
}

// NewLinear validates an artifact and compiles its tokenizer
func NewLinear(name string, a LinearArtifact) (*Linear, error) {
	if name == "" {
		name = a.Name
	}
	if len(a.Weights) == 0 {
		return nil, errors.New("linear model has no weights")
	}

	pattern := a.TokenPattern
	if pattern == "" {
		pattern = defaultTokenPattern
	}
	token, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("token pattern: %w", err)
	}

	positive, err := NormalizeLabel(a.PositiveLabel)
	if err != nil {
		return nil, fmt.Errorf("positive label: %w", err)
	}
	negative, err := NormalizeLabel(a.NegativeLabel)
	if err != nil {
		return nil, fmt.Errorf("negative label: %w", err)
	}
	if positive == negative {
		return nil, fmt.Errorf("positive and negative labels both map to %q", positive)
	}

	return &Linear{
		name:     name,
		artifact: a,
		token:    token,
		positive: positive,
		negative: negative,
	}, nil
}

// LoadLinear reads a JSON artifact from path
func LoadLinear(name, path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var a LinearArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}

	l, err := NewLinear(name, a)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return l, nil
}

// Name implements Classifier
func (l *Linear) Name() string { return l.name }

// Score returns the raw decision value for text
func (l *Linear) Score(text string) float64 {
	if l.artifact.Lowercase {
		text = strings.ToLower(text)
	}

	score := l.artifact.Bias
	seen := make(map[string]bool)
	for _, tok := range l.token.FindAllString(text, -1) {
		if l.artifact.Binary {
			if seen[tok] {
				continue
			}
			seen[tok] = true
		}
		score += l.artifact.Weights[tok]
	}
	return score
}

// Predict implements Classifier
func (l *Linear) Predict(ctx context.Context, text string) (model.Label, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.Score(text) > l.artifact.Threshold {
		return l.positive, nil
	}
	return l.negative, nil
}
