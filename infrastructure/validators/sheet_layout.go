package validators

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

var _ ports.Validator = (*SheetLayoutValidator)(nil)

// SheetLayoutValidator checks the AS 1100.101 sheet layout: the sheet
// format, the border margins and the title block.
//
// Each of the three sub-checks is all-or-nothing and carries its own
// sub-weight. The score is the weighted share of satisfied sub-checks.
// Border margins are normative quantities, so they must match exactly
// unless a tolerance is configured.
type SheetLayoutValidator struct {
	name      string
	threshold float64
	config    SheetLayoutConfig
}

// SheetLayoutConfig controls the sheet layout rule set.
type SheetLayoutConfig struct {
	// AllowedSizes lists the accepted sheet formats.
	AllowedSizes []domain.SheetSize `yaml:"allowed_sizes" json:"allowed_sizes" validate:"required,min=1,dive,required"`

	// BindingMargin is the required margin on the binding (left) edge.
	BindingMargin float64 `yaml:"binding_margin" json:"binding_margin" validate:"gt=0"`

	// OtherMargin is the required margin on the top, right and bottom edges.
	OtherMargin float64 `yaml:"other_margin" json:"other_margin" validate:"gt=0"`

	// MarginTolerance is the permitted deviation in mm. The default of 0
	// demands an exact match.
	MarginTolerance float64 `yaml:"margin_tolerance" json:"margin_tolerance" validate:"min=0"`

	// RequiredTitleFields lists the title block fields that must be
	// present and non-blank. Matching is caseless.
	RequiredTitleFields []string `yaml:"required_title_fields" json:"required_title_fields" validate:"dive,required"`

	// Weights are the sub-weights of the three sub-checks.
	Weights SheetLayoutWeights `yaml:"weights" json:"weights"`
}

// SheetLayoutWeights are the relative importances of the sheet layout
// sub-checks. At least one must be positive.
type SheetLayoutWeights struct {
	SheetSize  float64 `yaml:"sheet_size" json:"sheet_size" validate:"min=0"`
	Borders    float64 `yaml:"borders" json:"borders" validate:"min=0"`
	TitleBlock float64 `yaml:"title_block" json:"title_block" validate:"min=0"`
}

func (w SheetLayoutWeights) total() float64 { return w.SheetSize + w.Borders + w.TitleBlock }

// DefaultSheetLayoutConfig returns the AS 1100.101 defaults: A0 to A4
// sheets, a 20 mm binding margin, 10 mm elsewhere with no tolerance, and
// equally weighted sub-checks.
func DefaultSheetLayoutConfig() SheetLayoutConfig {
	return SheetLayoutConfig{
		AllowedSizes:        slices.Clone(domain.StandardSheetSizes),
		BindingMargin:       20,
		OtherMargin:         10,
		MarginTolerance:     0,
		RequiredTitleFields: []string{"title", "drawing_number", "drawn_by", "date", "scale", "material"},
		Weights:             SheetLayoutWeights{SheetSize: 1, Borders: 1, TitleBlock: 1},
	}
}

// NewSheetLayoutValidator creates a SheetLayoutValidator after validating
// its configuration.
func NewSheetLayoutValidator(name string, threshold float64, config SheetLayoutConfig) (*SheetLayoutValidator, error) {
	if err := checkIdentity(name, threshold); err != nil {
		return nil, err
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if config.Weights.total() <= 0 {
		return nil, fmt.Errorf("configuration validation failed: sub-check weights must not all be zero")
	}
	return &SheetLayoutValidator{name: name, threshold: threshold, config: config}, nil
}

// NewSheetLayoutFromSpec is the factory adapter used by the rubric loader.
func NewSheetLayoutFromSpec(spec ports.ValidatorSpec) (ports.Validator, error) {
	cfg := DefaultSheetLayoutConfig()
	if err := decodeParameters(spec.Parameters, &cfg); err != nil {
		return nil, err
	}
	return NewSheetLayoutValidator(spec.Name, spec.PassThreshold, cfg)
}

// Name returns the validator's rubric name.
func (v *SheetLayoutValidator) Name() string { return v.name }

// Validate scores the drawing's sheet layout.
func (v *SheetLayoutValidator) Validate(drawing *domain.Drawing) domain.ValidationResult {
	var (
		errs     []string
		warnings []string
		earned   float64
		passed   int
	)
	w := v.config.Weights

	if msg, ok := v.checkSheetSize(drawing); ok {
		earned += w.SheetSize
		passed++
		warnings = append(warnings, msg)
	} else {
		errs = append(errs, msg)
	}

	if borderErrs := v.checkBorders(drawing.Margins()); len(borderErrs) == 0 {
		earned += w.Borders
		passed++
	} else {
		errs = append(errs, borderErrs...)
	}

	if titleErrs := v.checkTitleBlock(drawing); len(titleErrs) == 0 {
		earned += w.TitleBlock
		passed++
	} else {
		errs = append(errs, titleErrs...)
	}

	return domain.MustValidationResult(domain.ResultInput{
		Score:           earned / w.total(),
		PassThreshold:   v.threshold,
		Errors:          errs,
		Warnings:        warnings,
		ChecksPerformed: 3,
		ChecksPassed:    passed,
	})
}

func (v *SheetLayoutValidator) checkSheetSize(drawing *domain.Drawing) (string, bool) {
	size := drawing.SheetSize()
	if size == "" {
		return "sheet size is not defined: cannot determine the drawing format", false
	}
	if !slices.Contains(v.config.AllowedSizes, size) {
		allowed := make([]string, len(v.config.AllowedSizes))
		for i, s := range v.config.AllowedSizes {
			allowed[i] = string(s)
		}
		return fmt.Sprintf("invalid sheet size %q: must be one of %s", size, strings.Join(allowed, ", ")), false
	}
	if w, h, ok := size.Dimensions(drawing.Orientation()); ok {
		return fmt.Sprintf("sheet size: %s %s (%vx%vmm)", size, drawing.Orientation(), w, h), true
	}
	return fmt.Sprintf("sheet size: %s", size), true
}

func (v *SheetLayoutValidator) checkBorders(m domain.Margins) []string {
	edges := []struct {
		name     string
		got      float64
		required float64
	}{
		{"left", m.Left, v.config.BindingMargin},
		{"top", m.Top, v.config.OtherMargin},
		{"right", m.Right, v.config.OtherMargin},
		{"bottom", m.Bottom, v.config.OtherMargin},
	}

	var errs []string
	for _, e := range edges {
		if !equalMM(e.got, e.required, v.config.MarginTolerance) {
			errs = append(errs, fmt.Sprintf("%s border margin %s does not match required %s",
				e.name, mm(e.got), mm(e.required)))
		}
	}
	return errs
}

func (v *SheetLayoutValidator) checkTitleBlock(drawing *domain.Drawing) []string {
	tb, ok := drawing.TitleBlock()
	if !ok {
		return []string{"title block not found: AS 1100.101 requires a title block with drawing information"}
	}

	present := make(map[string]bool, len(tb.Fields))
	for k, val := range tb.Fields {
		if strings.TrimSpace(val) != "" {
			present[fold(strings.TrimSpace(k))] = true
		}
	}

	var errs []string
	for _, field := range v.config.RequiredTitleFields {
		if !present[fold(field)] {
			errs = append(errs, fmt.Sprintf("title block missing required field %q", field))
		}
	}
	return errs
}
