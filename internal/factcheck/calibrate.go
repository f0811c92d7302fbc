package factcheck

import "github.com/ppiankov/newslens/internal/model"

// DefaultConfidenceThreshold is the confidence a fake verdict must reach to stand
const DefaultConfidenceThreshold = 0.8

// InsufficientCertaintyReason replaces the reasons of an overridden verdict
const InsufficientCertaintyReason = "Content could not be verified as fake with sufficient confidence"

// Calibrate overrides fake verdicts below threshold: the verdict becomes
// not-fake with confidence 1-c and a single fixed reason. Not-fake verdicts
// and confident fake verdicts pass through unchanged. Suggestions are never
// modified. The input is not mutated.
func Calibrate(v model.FakeNewsVerdict, threshold float64) (model.FakeNewsVerdict, bool) {
	if !v.IsFake || v.Confidence >= threshold {
		return v, false
	}

	out := v
	out.IsFake = false
	out.Confidence = clamp01(1 - v.Confidence)
	out.Reasons = []string{InsufficientCertaintyReason}
	return out, true
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
