package factcheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/newslens/internal/model"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// claimKeywords mark sentences that assert something checkable
var claimKeywords = []string{
	"according to", "officials said", "study", "research", "confirmed",
	"announced", "reported", "percent", "%", "million", "billion",
	"first", "proved", "scientists", "experts", "data shows",
}

// redFlags are phrases typical of sensational or fabricated content
var redFlags = []string{
	"shocking", "you won't believe", "share before", "they don't want you",
	"miracle", "100%", "breaking!!", "secret", "exposed", "forward this",
}

// Signals are deterministic observations about a text handed to the reasoner
type Signals struct {
	Sources        []model.Source
	Sentences      int
	ClaimSentences int
	RedFlags       []string
}

// Collect extracts URLs, grades them and counts claim-bearing sentences
func Collect(text string, grader *AuthorityGrader) Signals {
	var s Signals

	seen := make(map[string]bool)
	for _, raw := range urlPattern.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ".,;:!?")
		if seen[raw] {
			continue
		}
		seen[raw] = true
		if grader != nil {
			s.Sources = append(s.Sources, grader.Grade(raw))
		} else {
			s.Sources = append(s.Sources, model.Source{URL: raw, Authority: model.TierUnknown})
		}
	}

	sentences := splitSentences(text)
	s.Sentences = len(sentences)
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, kw := range claimKeywords {
			if strings.Contains(lower, kw) {
				s.ClaimSentences++
				break
			}
		}
	}

	lower := strings.ToLower(text)
	for _, flag := range redFlags {
		if strings.Contains(lower, flag) {
			s.RedFlags = append(s.RedFlags, flag)
		}
	}

	return s
}

// Describe renders the signals as prompt context
func (s Signals) Describe() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sentences: %d, of which %d make checkable claims.\n", s.Sentences, s.ClaimSentences)

	if len(s.Sources) == 0 {
		b.WriteString("Cited sources: none.\n")
	} else {
		b.WriteString("Cited sources:\n")
		for _, src := range s.Sources {
			fmt.Fprintf(&b, "- %s (%s)\n", src.URL, src.Authority)
		}
	}

	if len(s.RedFlags) > 0 {
		fmt.Fprintf(&b, "Sensational phrases: %s\n", strings.Join(s.RedFlags, ", "))
	}

	return b.String()
}

// splitSentences splits on terminators followed by whitespace. Fragments
// shorter than 20 runes are dropped.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)

	var sentences []string
	start := 0
	flush := func(end int) {
		sentence := strings.TrimSpace(string(runes[start:end]))
		if len([]rune(sentence)) >= 20 {
			sentences = append(sentences, sentence)
		}
		start = end
	}

	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?' || r == '।') && (i+1 == len(runes) || runes[i+1] == ' ') {
			flush(i + 1)
		}
	}
	if start < len(runes) {
		flush(len(runes))
	}

	return sentences
}
