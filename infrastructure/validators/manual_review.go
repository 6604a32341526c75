package validators

import (
	"fmt"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

var _ ports.Validator = (*ManualReviewValidator)(nil)

// ManualReviewValidator stands in for a rubric category that cannot be
// computed from drawing data, such as projection correctness. It never
// inspects the drawing and always returns the same neutral result flagged
// for manual review. The aggregator excludes it from the weighted score.
type ManualReviewValidator struct {
	name   string
	result domain.ValidationResult
}

// ManualReviewConfig describes what the reviewer has to check.
type ManualReviewConfig struct {
	// Description tells the reviewer what to check.
	Description string `yaml:"description" json:"description" validate:"max=500"`
}

// NewManualReviewValidator creates a ManualReviewValidator.
func NewManualReviewValidator(name string, config ManualReviewConfig) (*ManualReviewValidator, error) {
	if name == "" {
		return nil, ErrEmptyValidatorName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	warnings := []string{fmt.Sprintf("%s %s", name, domain.ManualReviewMessage)}
	if config.Description != "" {
		warnings = append(warnings, config.Description)
	}

	return &ManualReviewValidator{
		name:   name,
		result: domain.MustValidationResult(domain.ResultInput{
			Score:        0,
			Warnings:     warnings,
			ManualReview: true,
		}),
	}, nil
}

// NewManualReviewFromSpec is the factory adapter used by the rubric loader.
// The pass threshold is ignored since manual categories are never scored.
func NewManualReviewFromSpec(spec ports.ValidatorSpec) (ports.Validator, error) {
	var cfg ManualReviewConfig
	if err := decodeParameters(spec.Parameters, &cfg); err != nil {
		return nil, err
	}
	return NewManualReviewValidator(spec.Name, cfg)
}

// Name returns the validator's rubric name.
func (v *ManualReviewValidator) Name() string { return v.name }

// Validate returns the neutral manual review result.
func (v *ManualReviewValidator) Validate(*domain.Drawing) domain.ValidationResult {
	r := v.result
	r.Errors = []string{}
	r.Warnings = append([]string(nil), v.result.Warnings...)
	return r
}
