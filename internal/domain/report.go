package domain

import (
	"time"
)

// ManualReviewMessage is attached to every validator that needs a person
// to judge it.
const ManualReviewMessage = "requires manual review"

// ValidatorOutcome is a ValidationResult as it appears inside a
// ComplianceReport, annotated with the rubric data that applied to it.
type ValidatorOutcome struct {
	ValidationResult

	// Weight is the validator's share of the full rubric.
	Weight float64 `json:"weight"`

	// PassThreshold is the validator's own pass threshold.
	PassThreshold float64 `json:"pass_threshold"`

	// Automated is false for categories excluded from the weighted score.
	Automated bool `json:"automated"`

	// Standard names the AS 1100 part the validator checks against.
	Standard string `json:"standard,omitempty"`
}

// ComplianceReport is the immutable outcome of validating one drawing
// against the rubric. It is the artifact callers persist, display or use
// to gate generated output.
type ComplianceReport struct {
	// ID uniquely identifies this report (a UUID).
	ID string `json:"id"`

	// Drawing is the name of the drawing that was validated.
	Drawing string `json:"drawing,omitempty"`

	// Validators maps validator name to its outcome.
	Validators map[string]ValidatorOutcome `json:"validators"`

	// Order lists validator names in rubric order for display.
	Order []string `json:"order"`

	// WeightedScore is the renormalised weighted mean of the automated
	// validators' scores.
	WeightedScore float64 `json:"weighted_score"`

	// OverallPassed is WeightedScore >= ThresholdUsed.
	OverallPassed bool `json:"overall_passed"`

	// ThresholdUsed is the global pass threshold applied.
	ThresholdUsed float64 `json:"threshold_used"`

	// ManualReview lists validators that must be reviewed by a person.
	ManualReview []string `json:"manual_review"`

	// CreatedAt records when the report was produced.
	CreatedAt time.Time `json:"created_at"`
}

// Outcomes returns the validator outcomes in rubric order.
func (r *ComplianceReport) Outcomes() []ValidatorOutcome {
	out := make([]ValidatorOutcome, 0, len(r.Order))
	for _, name := range r.Order {
		if o, ok := r.Validators[name]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the names of automated validators that did not pass,
// in rubric order.
func (r *ComplianceReport) Failed() []string {
	var failed []string
	for _, name := range r.Order {
		o, ok := r.Validators[name]
		if ok && o.Automated && !o.Passed {
			failed = append(failed, name)
		}
	}
	return failed
}
