package classifier

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/newslens/internal/model"
)

// Registry holds the classifiers loaded at startup. It is read-only after
// Load and safe to share between requests.
type Registry struct {
	classifiers []Classifier
}

// NewRegistry wraps already-constructed classifiers
func NewRegistry(classifiers ...Classifier) *Registry {
	return &Registry{classifiers: append([]Classifier(nil), classifiers...)}
}

// Load builds every configured classifier. transport is used by remote
// classifiers and may be nil.
func Load(configs []model.ClassifierConfig, transport http.RoundTripper) (*Registry, error) {
	seen := make(map[string]bool)
	classifiers := make([]Classifier, 0, len(configs))

	for i, cfg := range configs {
		name := cfg.Name
		if name == "" {
			name = fmt.Sprintf("classifier-%d", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate classifier name %q", name)
		}
		seen[name] = true

		var c Classifier
		switch strings.ToLower(cfg.Kind) {
		case "linear", "":
			if cfg.Path == "" {
				return nil, fmt.Errorf("classifier %s: path is required for linear models", name)
			}
			l, err := LoadLinear(name, cfg.Path)
			if err != nil {
				return nil, err
			}
			c = l
		case "remote":
			if cfg.URL == "" {
				return nil, fmt.Errorf("classifier %s: url is required for remote models", name)
			}
			c = NewRemote(name, cfg.URL, time.Duration(cfg.Timeout)*time.Second, transport)
		default:
			return nil, fmt.Errorf("classifier %s: unknown kind %q (supported: linear, remote)", name, cfg.Kind)
		}

		classifiers = append(classifiers, c)
	}

	return &Registry{classifiers: classifiers}, nil
}

// All returns the classifiers in configuration order
func (r *Registry) All() []Classifier {
	if r == nil {
		return nil
	}
	return append([]Classifier(nil), r.classifiers...)
}

// Len returns the number of classifiers
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.classifiers)
}

// Names lists classifier names in order
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	return names
}
