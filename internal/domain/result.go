package domain

import (
	"fmt"
	"math"
	"slices"
)

// ValidationResult is the outcome of one validator inspecting one drawing.
// Results are values: once built they are treated as read-only by every
// consumer, and NewValidationResult copies the message slices it is given.
type ValidationResult struct {
	// Passed reports whether Score reached the validator's pass threshold.
	Passed bool `json:"passed"`

	// Score is the proportion of checked criteria satisfied, in [0, 1].
	Score float64 `json:"score"`

	// Errors lists violations suitable for direct display to a reviewer.
	Errors []string `json:"errors"`

	// Warnings lists advisory messages that do not affect the score.
	Warnings []string `json:"warnings"`

	// ChecksPerformed and ChecksPassed count the individual criteria the
	// validator evaluated. They are informational only.
	ChecksPerformed int `json:"checks_performed"`
	ChecksPassed    int `json:"checks_passed"`

	// ManualReview marks results from categories that cannot be computed
	// from drawing data and must be judged by a person.
	ManualReview bool `json:"manual_review,omitempty"`
}

// ResultInput collects the pieces of a ValidationResult before it is
// checked and frozen by NewValidationResult.
type ResultInput struct {
	Score           float64
	PassThreshold   float64
	Errors          []string
	Warnings        []string
	ChecksPerformed int
	ChecksPassed    int
	ManualReview    bool
}

// NewValidationResult builds a ValidationResult, deriving Passed from the
// score and pass threshold. It returns ErrInvalidScore when the score is
// NaN or outside [0, 1].
func NewValidationResult(in ResultInput) (ValidationResult, error) {
	if math.IsNaN(in.Score) || in.Score < 0 || in.Score > 1 {
		return ValidationResult{}, fmt.Errorf("%w: %v", ErrInvalidScore, in.Score)
	}

	errs := slices.Clone(in.Errors)
	if errs == nil {
		errs = []string{}
	}
	warns := slices.Clone(in.Warnings)
	if warns == nil {
		warns = []string{}
	}

	return ValidationResult{
		Passed:          !in.ManualReview && in.Score >= in.PassThreshold,
		Score:           in.Score,
		Errors:          errs,
		Warnings:        warns,
		ChecksPerformed: in.ChecksPerformed,
		ChecksPassed:    in.ChecksPassed,
		ManualReview:    in.ManualReview,
	}, nil
}

// MustValidationResult is like NewValidationResult but panics on an
// invalid score. Validators use it where the score is a ratio of counts
// and cannot leave [0, 1].
func MustValidationResult(in ResultInput) ValidationResult {
	r, err := NewValidationResult(in)
	if err != nil {
		panic(err)
	}
	return r
}

// MissingResult is the result substituted for a validator that produced
// nothing, either because it faulted or because it never ran.
func MissingResult(name string, cause error) ValidationResult {
	errs := []string{fmt.Sprintf("validator %s did not produce a result", name)}
	if cause != nil {
		errs = append(errs, cause.Error())
	}
	return ValidationResult{
		Passed:   false,
		Score:    0,
		Errors:   errs,
		Warnings: []string{},
	}
}
