package validators

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

var _ ports.Validator = (*TextSymbolsValidator)(nil)

// TextSymbolsValidator checks text entities against the AS 1100.101
// lettering rules: the character height must be one of the standard sizes
// and the font must be the required family. The score is the fraction of
// compliant text entities.
//
// Font names are compared after Unicode case folding. A font that differs
// from the required family by at most SuggestDistance edits is still a
// violation, but also produces a "did you mean" warning.
type TextSymbolsValidator struct {
	name      string
	threshold float64
	config    TextSymbolsConfig
	wantFont  string
}

// TextSymbolsConfig controls the text and symbols rule set.
type TextSymbolsConfig struct {
	// Heights lists the standard character heights in mm.
	Heights []float64 `yaml:"heights" json:"heights" validate:"required,min=1,dive,gt=0"`

	// FontFamily is the required lettering font.
	FontFamily string `yaml:"font_family" json:"font_family" validate:"required"`

	// HeightTolerance is the permitted deviation from a standard height.
	HeightTolerance float64 `yaml:"height_tolerance" json:"height_tolerance" validate:"min=0"`

	// SuggestDistance is the largest edit distance for which a near-miss
	// font name is reported as a likely typo. Zero disables hints.
	SuggestDistance int `yaml:"suggest_distance" json:"suggest_distance" validate:"min=0,max=10"`
}

// DefaultTextSymbolsConfig returns the AS 1100.101 lettering sizes and the
// ISOCPEUR font.
func DefaultTextSymbolsConfig() TextSymbolsConfig {
	return TextSymbolsConfig{
		Heights:         []float64{2.5, 3.5, 5, 7, 10, 14, 20},
		FontFamily:      "ISOCPEUR",
		HeightTolerance: 0,
		SuggestDistance: 2,
	}
}

// NewTextSymbolsValidator creates a TextSymbolsValidator after validating
// its configuration.
func NewTextSymbolsValidator(name string, threshold float64, config TextSymbolsConfig) (*TextSymbolsValidator, error) {
	if err := checkIdentity(name, threshold); err != nil {
		return nil, err
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &TextSymbolsValidator{
		name:      name,
		threshold: threshold,
		config:    config,
		wantFont:  fold(strings.TrimSpace(config.FontFamily)),
	}, nil
}

// NewTextSymbolsFromSpec is the factory adapter used by the rubric loader.
func NewTextSymbolsFromSpec(spec ports.ValidatorSpec) (ports.Validator, error) {
	cfg := DefaultTextSymbolsConfig()
	if err := decodeParameters(spec.Parameters, &cfg); err != nil {
		return nil, err
	}
	return NewTextSymbolsValidator(spec.Name, spec.PassThreshold, cfg)
}

// Name returns the validator's rubric name.
func (v *TextSymbolsValidator) Name() string { return v.name }

// Validate scores the drawing's text entities.
func (v *TextSymbolsValidator) Validate(drawing *domain.Drawing) domain.ValidationResult {
	texts := drawing.Texts()
	if len(texts) == 0 {
		return domain.MustValidationResult(domain.ResultInput{
			Score:           1,
			PassThreshold:   v.threshold,
			Warnings:        []string{"no text entities found: cannot validate lettering standards"},
			ChecksPerformed: 1,
			ChecksPassed:    1,
		})
	}

	var errs, warnings []string
	compliant := 0
	for i, text := range texts {
		ok := true

		if !containsMM(v.config.Heights, text.Height, v.config.HeightTolerance) {
			ok = false
			errs = append(errs, fmt.Sprintf("text %d: height %s is not a standard lettering size", i+1, mm(text.Height)))
		}

		got := fold(strings.TrimSpace(text.FontFamily))
		if got != v.wantFont {
			ok = false
			if got == "" {
				errs = append(errs, fmt.Sprintf("text %d: font family not set, required %q", i+1, v.config.FontFamily))
			} else {
				errs = append(errs, fmt.Sprintf("text %d: font %q does not match required %q", i+1, text.FontFamily, v.config.FontFamily))
				if v.isNearMiss(got) {
					warnings = append(warnings, fmt.Sprintf("text %d: font %q looks like a misspelling, did you mean %q?", i+1, text.FontFamily, v.config.FontFamily))
				}
			}
		}

		if ok {
			compliant++
		}
	}

	warnings = append(warnings, fmt.Sprintf("text and symbols: %d of %d text entities compliant", compliant, len(texts)))

	return domain.MustValidationResult(domain.ResultInput{
		Score:           ratio(compliant, len(texts)),
		PassThreshold:   v.threshold,
		Errors:          errs,
		Warnings:        warnings,
		ChecksPerformed: len(texts),
		ChecksPassed:    compliant,
	})
}

func (v *TextSymbolsValidator) isNearMiss(font string) bool {
	if v.config.SuggestDistance == 0 {
		return false
	}
	return levenshtein.ComputeDistance(font, v.wantFont) <= v.config.SuggestDistance
}
