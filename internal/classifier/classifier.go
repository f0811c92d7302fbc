// Package classifier loads the fake-news classifiers used by the ensemble.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/newslens/internal/model"
)

// Classifier labels a text as real or fake
type Classifier interface {
	Name() string
	Predict(ctx context.Context, text string) (model.Label, error)
}

// NormalizeLabel maps the label vocabularies of the persisted models onto
// model.Label
func NormalizeLabel(raw string) (model.Label, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "not a fake news", "real", "true", "1":
		return model.LabelReal, nil
	case "fake news", "fake", "false", "0":
		return model.LabelFake, nil
	}
	return "", fmt.Errorf("unrecognized classifier label %q", raw)
}
