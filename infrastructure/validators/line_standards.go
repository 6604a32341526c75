package validators

import (
	"fmt"
	"slices"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

var _ ports.Validator = (*LineStandardsValidator)(nil)

// LineClass is the weight class a line usage is drawn in.
type LineClass string

// Line weight classes.
const (
	ClassThick LineClass = "thick"
	ClassThin  LineClass = "thin"
)

// LineRule pairs a usage with the weight class and style it requires.
type LineRule struct {
	Class LineClass        `yaml:"class" json:"class" validate:"required,oneof=thick thin"`
	Style domain.LineStyle `yaml:"style" json:"style" validate:"required,oneof=continuous dashed chain"`
}

// LineStandardsValidator checks every line entity against the AS 1100.101
// line thickness series and the thickness/style pairing implied by its
// usage. An entity is compliant only when both constraints hold; the
// score is the fraction of compliant entities.
type LineStandardsValidator struct {
	name      string
	threshold float64
	config    LineStandardsConfig
}

// LineStandardsConfig controls the line standards rule set.
type LineStandardsConfig struct {
	// Thicknesses is the standard pen width series in mm.
	Thicknesses []float64 `yaml:"thicknesses" json:"thicknesses" validate:"required,min=1,dive,gt=0"`

	// ThickSet lists the widths that count as thick lines. Every other
	// member of Thicknesses is thin.
	ThickSet []float64 `yaml:"thick_set" json:"thick_set" validate:"required,min=1,dive,gt=0"`

	// Rules maps each usage to its required class and style.
	Rules map[domain.LineUsage]LineRule `yaml:"rules" json:"rules" validate:"required,min=1,dive"`

	// Tolerance is the permitted deviation from a standard width in mm.
	Tolerance float64 `yaml:"tolerance" json:"tolerance" validate:"min=0"`
}

// DefaultLineStandardsConfig returns the AS 1100.101 line series and
// usage pairings.
func DefaultLineStandardsConfig() LineStandardsConfig {
	return LineStandardsConfig{
		Thicknesses: []float64{0.18, 0.25, 0.35, 0.5, 0.7, 1.0, 1.4, 2.0},
		ThickSet:    []float64{0.5, 0.7, 1.0, 1.4, 2.0},
		Rules: map[domain.LineUsage]LineRule{
			domain.UsageVisible:   {Class: ClassThick, Style: domain.StyleContinuous},
			domain.UsageHidden:    {Class: ClassThin, Style: domain.StyleDashed},
			domain.UsageCenter:    {Class: ClassThin, Style: domain.StyleChain},
			domain.UsageDimension: {Class: ClassThin, Style: domain.StyleContinuous},
			domain.UsageExtension: {Class: ClassThin, Style: domain.StyleContinuous},
		},
		Tolerance: 0,
	}
}

// NewLineStandardsValidator creates a LineStandardsValidator after
// validating its configuration.
func NewLineStandardsValidator(name string, threshold float64, config LineStandardsConfig) (*LineStandardsValidator, error) {
	if err := checkIdentity(name, threshold); err != nil {
		return nil, err
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	for _, w := range config.ThickSet {
		if !containsMM(config.Thicknesses, w, config.Tolerance) {
			return nil, fmt.Errorf("configuration validation failed: thick width %s is not in the thickness series", mm(w))
		}
	}
	return &LineStandardsValidator{name: name, threshold: threshold, config: config}, nil
}

// NewLineStandardsFromSpec is the factory adapter used by the rubric loader.
func NewLineStandardsFromSpec(spec ports.ValidatorSpec) (ports.Validator, error) {
	cfg := DefaultLineStandardsConfig()
	if err := decodeParameters(spec.Parameters, &cfg); err != nil {
		return nil, err
	}
	return NewLineStandardsValidator(spec.Name, spec.PassThreshold, cfg)
}

// Name returns the validator's rubric name.
func (v *LineStandardsValidator) Name() string { return v.name }

// Validate scores the drawing's line work.
func (v *LineStandardsValidator) Validate(drawing *domain.Drawing) domain.ValidationResult {
	lines := drawing.Lines()
	if len(lines) == 0 {
		return domain.MustValidationResult(domain.ResultInput{
			Score:           1,
			PassThreshold:   v.threshold,
			Warnings:        []string{"no line entities found: cannot validate line standards"},
			ChecksPerformed: 1,
			ChecksPassed:    1,
		})
	}

	var errs []string
	compliant := 0
	for i, line := range lines {
		lineErrs := v.checkLine(i, line)
		if len(lineErrs) == 0 {
			compliant++
			continue
		}
		errs = append(errs, lineErrs...)
	}

	return domain.MustValidationResult(domain.ResultInput{
		Score:           ratio(compliant, len(lines)),
		PassThreshold:   v.threshold,
		Errors:          errs,
		Warnings:        []string{fmt.Sprintf("line standards: %d of %d line entities compliant", compliant, len(lines))},
		ChecksPerformed: len(lines),
		ChecksPassed:    compliant,
	})
}

func (v *LineStandardsValidator) checkLine(i int, line domain.LineEntity) []string {
	var errs []string

	if !containsMM(v.config.Thicknesses, line.Thickness, v.config.Tolerance) {
		errs = append(errs, fmt.Sprintf("line %d: thickness %s is not a standard line width", i+1, mm(line.Thickness)))
	}

	rule, ok := v.config.Rules[line.Usage]
	if !ok {
		errs = append(errs, fmt.Sprintf("line %d: unknown usage %q", i+1, line.Usage))
		return errs
	}

	if class := v.classOf(line.Thickness); class != rule.Class {
		errs = append(errs, fmt.Sprintf("line %d: %s lines must be %s, got %s (%s)",
			i+1, line.Usage, rule.Class, class, mm(line.Thickness)))
	}
	if line.Style != rule.Style {
		errs = append(errs, fmt.Sprintf("line %d: %s lines must be %s, got %q",
			i+1, line.Usage, rule.Style, line.Style))
	}
	return errs
}

func (v *LineStandardsValidator) classOf(thickness float64) LineClass {
	if slices.ContainsFunc(v.config.ThickSet, func(w float64) bool {
		return equalMM(w, thickness, v.config.Tolerance)
	}) {
		return ClassThick
	}
	return ClassThin
}
