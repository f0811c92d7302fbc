package summarize

import (
	"sort"
	"strings"

	"github.com/ppiankov/newslens/internal/chunk"
	"github.com/ppiankov/newslens/internal/model"
)

// Combine joins partial summaries with single spaces in chunk order
func Combine(partials []model.PartialSummary) (string, error) {
	if len(partials) == 0 {
		return "", chunk.ErrNoChunks
	}

	ordered := append([]model.PartialSummary(nil), partials...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	texts := make([]string, len(ordered))
	for i, p := range ordered {
		texts[i] = p.Text
	}
	return strings.Join(texts, " "), nil
}
