package domain

// ExtractionResult is the output of the external parameter extractor: the
// drawing parameters it derived and how confident it is in them.
type ExtractionResult struct {
	// Parameters maps field name to the extracted value.
	Parameters map[string]any `json:"parameters"`

	// Confidence is the extractor's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// GateDecision routes an ExtractionResult either to automatic use or to
// manual input.
type GateDecision struct {
	// UseAutomatic is true when the extracted parameters may be used
	// without human review.
	UseAutomatic bool `json:"use_automatic"`

	// Reason explains the decision with the compared values.
	Reason string `json:"reason"`

	Confidence float64 `json:"confidence"`
	Threshold  float64 `json:"threshold"`
}
