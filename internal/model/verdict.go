package model

// Label is a single classifier's decision
type Label string

const (
	LabelReal Label = "real"
	LabelFake Label = "fake"
)

// Vote records which classifier produced which label
type Vote struct {
	Classifier string `json:"classifier"`
	Label      Label  `json:"label"`
}

// EnsembleLabel is the outcome of the temporal gate plus ensemble vote
type EnsembleLabel string

const (
	EnsembleReal         EnsembleLabel = "Real"
	EnsembleFake         EnsembleLabel = "Fake"
	EnsembleUndetermined EnsembleLabel = "Cannot determine"
)

// FakeNewsVerdict is the reasoner's structured judgement.
// Confidence is always within [0, 1].
type FakeNewsVerdict struct {
	IsFake      bool     `json:"is_fake"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons"`
	Suggestions []string `json:"suggestions"`
}
