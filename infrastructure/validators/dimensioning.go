package validators

import (
	"fmt"
	"strings"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

var _ ports.Validator = (*DimensioningValidator)(nil)

// DimensioningValidator checks dimension entities against AS 1100.101.
//
// Per entity it checks that the arrow is ArrowMultiplier times the
// associated line thickness, that the extension line gap lies in
// [MinExtensionGap, MaxExtensionGap] and that the text height reaches
// MinTextHeight. Decimal places are checked globally: the most common
// count across the drawing is the baseline (ties resolve to the lowest
// count) and every entity that disagrees is a violation. The
// consistency check is reported as a single error for the whole set.
//
// Scoring: each entity earns a credit in [0, 1] and the score is the mean
// credit. Without partial credit an entity earns 1 only when all four
// sub-checks pass. With partial credit it earns the weighted share of
// passed sub-checks.
type DimensioningValidator struct {
	name      string
	threshold float64
	config    DimensioningConfig
}

// DimensioningConfig controls the dimensioning rule set.
type DimensioningConfig struct {
	// ArrowMultiplier relates arrow size to dimension line thickness.
	ArrowMultiplier float64 `yaml:"arrow_multiplier" json:"arrow_multiplier" validate:"gt=0"`

	// ArrowTolerance is the permitted arrow size deviation in mm.
	ArrowTolerance float64 `yaml:"arrow_tolerance" json:"arrow_tolerance" validate:"min=0"`

	// DefaultLineThickness is assumed for entities that do not record the
	// thickness of their dimension line.
	DefaultLineThickness float64 `yaml:"default_line_thickness" json:"default_line_thickness" validate:"gt=0"`

	MinExtensionGap float64 `yaml:"min_extension_gap" json:"min_extension_gap" validate:"min=0"`
	MaxExtensionGap float64 `yaml:"max_extension_gap" json:"max_extension_gap" validate:"gtefield=MinExtensionGap"`

	// MinTextHeight is the smallest permitted dimension text height in mm.
	MinTextHeight float64 `yaml:"min_text_height" json:"min_text_height" validate:"gt=0"`

	// PartialCredit enables weighted per-entity credit.
	PartialCredit bool `yaml:"partial_credit" json:"partial_credit"`

	// Weights are the sub-check weights used when PartialCredit is set.
	Weights DimensioningWeights `yaml:"weights" json:"weights"`
}

// DimensioningWeights are the relative importances of the per-entity
// dimensioning sub-checks.
type DimensioningWeights struct {
	Arrow         float64 `yaml:"arrow" json:"arrow" validate:"min=0"`
	ExtensionGap  float64 `yaml:"extension_gap" json:"extension_gap" validate:"min=0"`
	TextHeight    float64 `yaml:"text_height" json:"text_height" validate:"min=0"`
	DecimalPlaces float64 `yaml:"decimal_places" json:"decimal_places" validate:"min=0"`
}

func (w DimensioningWeights) total() float64 {
	return w.Arrow + w.ExtensionGap + w.TextHeight + w.DecimalPlaces
}

// DefaultDimensioningConfig returns the AS 1100.101 dimensioning values:
// arrows 3x a 0.25 mm line, 1 to 2 mm extension gaps, 3.5 mm minimum text
// and strict all-or-nothing entity credit.
func DefaultDimensioningConfig() DimensioningConfig {
	return DimensioningConfig{
		ArrowMultiplier:      3,
		ArrowTolerance:       0,
		DefaultLineThickness: 0.25,
		MinExtensionGap:      1,
		MaxExtensionGap:      2,
		MinTextHeight:        3.5,
		PartialCredit:        false,
		Weights: DimensioningWeights{
			Arrow:         0.25,
			ExtensionGap:  0.25,
			TextHeight:    0.25,
			DecimalPlaces: 0.25,
		},
	}
}

// NewDimensioningValidator creates a DimensioningValidator after
// validating its configuration.
func NewDimensioningValidator(name string, threshold float64, config DimensioningConfig) (*DimensioningValidator, error) {
	if err := checkIdentity(name, threshold); err != nil {
		return nil, err
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if config.PartialCredit && config.Weights.total() <= 0 {
		return nil, fmt.Errorf("configuration validation failed: partial credit needs a positive sub-check weight")
	}
	return &DimensioningValidator{name: name, threshold: threshold, config: config}, nil
}

// NewDimensioningFromSpec is the factory adapter used by the rubric loader.
func NewDimensioningFromSpec(spec ports.ValidatorSpec) (ports.Validator, error) {
	cfg := DefaultDimensioningConfig()
	if err := decodeParameters(spec.Parameters, &cfg); err != nil {
		return nil, err
	}
	return NewDimensioningValidator(spec.Name, spec.PassThreshold, cfg)
}

// Name returns the validator's rubric name.
func (v *DimensioningValidator) Name() string { return v.name }

// dimensionCheck holds the sub-check outcomes of one entity.
type dimensionCheck struct {
	arrow, gap, text, decimals bool
}

func (c dimensionCheck) all() bool { return c.arrow && c.gap && c.text && c.decimals }

// Validate scores the drawing's dimensioning.
func (v *DimensioningValidator) Validate(drawing *domain.Drawing) domain.ValidationResult {
	dims := drawing.Dimensions()
	if len(dims) == 0 {
		return domain.MustValidationResult(domain.ResultInput{
			Score:           1,
			PassThreshold:   v.threshold,
			Warnings:        []string{"no dimension entities found: cannot validate dimensioning standards"},
			ChecksPerformed: 1,
			ChecksPassed:    1,
		})
	}

	baseline := majorityDecimals(dims)

	var (
		errs         []string
		inconsistent []string
		credit       float64
		compliant    int
	)
	for i, d := range dims {
		c := dimensionCheck{decimals: d.DecimalPlaces == baseline}
		if !c.decimals {
			inconsistent = append(inconsistent, fmt.Sprintf("%d (%d)", i+1, d.DecimalPlaces))
		}

		lineThickness := d.LineThickness
		if lineThickness <= 0 {
			lineThickness = v.config.DefaultLineThickness
		}
		expectedArrow := v.config.ArrowMultiplier * lineThickness
		c.arrow = equalMM(d.ArrowSize, expectedArrow, v.config.ArrowTolerance)
		if !c.arrow {
			errs = append(errs, fmt.Sprintf("dimension %d: arrow size %s should be %vx line thickness %s = %s",
				i+1, mm(d.ArrowSize), v.config.ArrowMultiplier, mm(lineThickness), mm(expectedArrow)))
		}

		c.gap = d.ExtensionGap >= v.config.MinExtensionGap-floatEpsilon &&
			d.ExtensionGap <= v.config.MaxExtensionGap+floatEpsilon
		if !c.gap {
			errs = append(errs, fmt.Sprintf("dimension %d: extension line gap %s outside %s to %s",
				i+1, mm(d.ExtensionGap), mm(v.config.MinExtensionGap), mm(v.config.MaxExtensionGap)))
		}

		c.text = d.TextHeight >= v.config.MinTextHeight-floatEpsilon
		if !c.text {
			errs = append(errs, fmt.Sprintf("dimension %d: text height %s below %s minimum",
				i+1, mm(d.TextHeight), mm(v.config.MinTextHeight)))
		}

		if c.all() {
			compliant++
		}
		credit += v.credit(c)
	}

	if len(inconsistent) > 0 {
		errs = append(errs, fmt.Sprintf("inconsistent decimal places: baseline is %d, dimensions %s differ",
			baseline, strings.Join(inconsistent, ", ")))
	}

	return domain.MustValidationResult(domain.ResultInput{
		Score:           clampUnit(credit / float64(len(dims))),
		PassThreshold:   v.threshold,
		Errors:          errs,
		Warnings:        []string{fmt.Sprintf("dimensioning: %d of %d dimensions compliant, %d decimal places", compliant, len(dims), baseline)},
		ChecksPerformed: len(dims),
		ChecksPassed:    compliant,
	})
}

func (v *DimensioningValidator) credit(c dimensionCheck) float64 {
	if !v.config.PartialCredit {
		if c.all() {
			return 1
		}
		return 0
	}
	w := v.config.Weights
	var earned float64
	if c.arrow {
		earned += w.Arrow
	}
	if c.gap {
		earned += w.ExtensionGap
	}
	if c.text {
		earned += w.TextHeight
	}
	if c.decimals {
		earned += w.DecimalPlaces
	}
	return earned / w.total()
}

// majorityDecimals returns the most common decimal place count. Ties
// resolve to the lowest count so the baseline is independent of entity
// order.
func majorityDecimals(dims []domain.DimensionEntity) int {
	counts := make(map[int]int)
	for _, d := range dims {
		counts[d.DecimalPlaces]++
	}
	best, bestCount := 0, -1
	for places, n := range counts {
		if n > bestCount || (n == bestCount && places < best) {
			best, bestCount = places, n
		}
	}
	return best
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
