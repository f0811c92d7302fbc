package model

import "unicode/utf8"

// Language is the coarse language tag assigned by the language router
type Language string

const (
	LangEnglish Language = "english"
	LangHindi   Language = "hindi"
	LangOther   Language = "other"
)

// Document is input text after language routing
type Document struct {
	Text     string   `json:"text"`
	Language Language `json:"language"`
	// Translated is set when Text is an English translation of the input
	Translated bool `json:"translated,omitempty"`
}

// Chunk is a contiguous window of a document.
// Start is measured in runes from the beginning of the document.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	Text  string `json:"text"`
}

// Len returns the chunk length in runes
func (c Chunk) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// Outcome tells how a partial summary was produced
type Outcome int

const (
	// OutcomeParsed means the LLM returned a usable summary
	OutcomeParsed Outcome = iota
	// OutcomeDegraded means the chunk prefix was used in place of a summary
	OutcomeDegraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeParsed:
		return "parsed"
	case OutcomeDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// PartialSummary is the summary of exactly one chunk
type PartialSummary struct {
	Index   int     `json:"index"`
	Text    string  `json:"text"`
	Outcome Outcome `json:"outcome"`
	// Reason carries the failure that forced a degraded outcome
	Reason string `json:"reason,omitempty"`
}

// Degraded reports whether the summary fell back to the chunk prefix
func (p PartialSummary) Degraded() bool {
	return p.Outcome == OutcomeDegraded
}
