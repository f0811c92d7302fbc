package factcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/newslens/internal/model"
)

func TestAuthorityGrader_Grade(t *testing.T) {
	cfg := model.DefaultConfig().Authority
	cfg.DomainMap = map[string]string{"example.org": "secondary"}
	cfg.PathPatterns = []model.PathPattern{{Pattern: `^/press/`, Tier: "primary"}, {Pattern: "(", Tier: "primary"}}
	g := NewAuthorityGrader(cfg)

	tests := map[string]model.AuthorityTier{
		"https://www.who.int/news":            model.TierPrimary,
		"https://pib.gov.in/release":          model.TierPrimary,
		"https://www.reuters.com/world/x":     model.TierSecondary,
		"https://en.wikipedia.org/wiki/Flood": model.TierSecondary,
		"https://example.org/anything":        model.TierSecondary,
		"https://company.com/press/2019":      model.TierPrimary,
		"https://www.nasa.gov/missions":       model.TierPrimary,
		"https://cs.stanford.edu/paper":       model.TierPrimary,
		"https://whatsapp-forwards.blog/post": model.TierTertiary,
		"not a url":                           model.TierTertiary,
	}
	for raw, want := range tests {
		assert.Equal(t, want, g.Grade(raw).Authority, raw)
	}

	assert.Equal(t, "reuters.com", g.Grade("https://www.reuters.com/x").Host)
}

func TestCollect(t *testing.T) {
	text := "SHOCKING: scientists confirmed the miracle cure works! " +
		"Read more at https://health-truth.blog/cure, and https://www.who.int/q-a. " +
		"Share before it is deleted. Read more at https://health-truth.blog/cure."

	s := Collect(text, NewAuthorityGrader(model.DefaultConfig().Authority))

	require.Len(t, s.Sources, 2)
	assert.Equal(t, "https://health-truth.blog/cure", s.Sources[0].URL)
	assert.Equal(t, model.TierTertiary, s.Sources[0].Authority)
	assert.Equal(t, "https://www.who.int/q-a", s.Sources[1].URL)
	assert.Equal(t, model.TierPrimary, s.Sources[1].Authority)

	assert.Equal(t, 1, s.ClaimSentences)
	assert.ElementsMatch(t, []string{"shocking", "miracle", "share before"}, s.RedFlags)

	desc := s.Describe()
	assert.Contains(t, desc, "https://www.who.int/q-a (primary)")
	assert.Contains(t, desc, "Sensational phrases:")
}

func TestCollect_NoGrader(t *testing.T) {
	s := Collect("See http://a.example/x for details about this topic.", nil)
	require.Len(t, s.Sources, 1)
	assert.Equal(t, model.TierUnknown, s.Sources[0].Authority)
	assert.Contains(t, Collect("", nil).Describe(), "Cited sources: none.")
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("The dam was completed in 2019 after delays. Short one. Was it on budget? Officials declined to comment")
	assert.Equal(t, []string{
		"The dam was completed in 2019 after delays.",
		"Officials declined to comment",
	}, got)
}
