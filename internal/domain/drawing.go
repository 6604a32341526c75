// Package domain contains pure, dependency-free domain models and types
// for the compliance engine.
package domain

import (
	"maps"
	"slices"
)

// SheetSize identifies one of the standard drawing sheet formats.
type SheetSize string

// Standard sheet sizes recognised by AS 1100.101.
const (
	SheetA0 SheetSize = "A0"
	SheetA1 SheetSize = "A1"
	SheetA2 SheetSize = "A2"
	SheetA3 SheetSize = "A3"
	SheetA4 SheetSize = "A4"
)

// StandardSheetSizes lists the sheet sizes in descending order of area.
var StandardSheetSizes = []SheetSize{SheetA0, SheetA1, SheetA2, SheetA3, SheetA4}

// sheetDimensions holds the landscape width and height of each size in mm.
var sheetDimensions = map[SheetSize][2]float64{
	SheetA0: {1189, 841},
	SheetA1: {841, 594},
	SheetA2: {594, 420},
	SheetA3: {420, 297},
	SheetA4: {297, 210},
}

// Dimensions returns the sheet width and height in millimetres for the
// given orientation. ok is false for sizes outside the standard set.
func (s SheetSize) Dimensions(o Orientation) (width, height float64, ok bool) {
	d, ok := sheetDimensions[s]
	if !ok {
		return 0, 0, false
	}
	if o == Portrait {
		return d[1], d[0], true
	}
	return d[0], d[1], true
}

// Orientation describes how the sheet is laid out.
type Orientation string

// Supported sheet orientations. The zero value is treated as landscape.
const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// Margins records the border distance in millimetres from each sheet edge.
type Margins struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// TitleBlock holds the fields written into the drawing's title block.
// Field names are free-form; validators decide which ones are required.
type TitleBlock struct {
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// LineUsage is the drafting purpose of a line entity.
type LineUsage string

// Line usages distinguished by the line standards.
const (
	UsageVisible   LineUsage = "visible"
	UsageHidden    LineUsage = "hidden"
	UsageCenter    LineUsage = "center"
	UsageDimension LineUsage = "dimension"
	UsageExtension LineUsage = "extension"
)

// LineStyle is the dash pattern a line is drawn with.
type LineStyle string

// Line styles.
const (
	StyleContinuous LineStyle = "continuous"
	StyleDashed     LineStyle = "dashed"
	StyleChain      LineStyle = "chain"
)

// LineEntity is a single piece of line work.
type LineEntity struct {
	// Thickness is the pen width in millimetres.
	Thickness float64   `json:"thickness" yaml:"thickness"`
	Style     LineStyle `json:"style" yaml:"style"`
	Usage     LineUsage `json:"usage" yaml:"usage"`
	Layer     string    `json:"layer,omitempty" yaml:"layer,omitempty"`
}

// TextEntity is a single text annotation.
type TextEntity struct {
	// Height is the character height in millimetres.
	Height     float64 `json:"height" yaml:"height"`
	FontFamily string  `json:"font_family" yaml:"font_family"`
	Content    string  `json:"content,omitempty" yaml:"content,omitempty"`
}

// DimensionEntity is a single dimension annotation.
type DimensionEntity struct {
	// ArrowSize is the arrowhead length in millimetres.
	ArrowSize float64 `json:"arrow_size" yaml:"arrow_size"`
	// LineThickness is the thickness of the dimension line the arrow
	// terminates. Zero means the generator did not record it.
	LineThickness float64 `json:"line_thickness" yaml:"line_thickness"`
	// ExtensionGap is the gap between the object outline and the
	// extension line in millimetres.
	ExtensionGap  float64 `json:"extension_gap" yaml:"extension_gap"`
	TextHeight    float64 `json:"text_height" yaml:"text_height"`
	DecimalPlaces int     `json:"decimal_places" yaml:"decimal_places"`
}

// DrawingSpec is the mutable description of a drawing handed over by the
// drawing generator. It is converted into an immutable Drawing with
// NewDrawing before validation.
type DrawingSpec struct {
	Name        string            `json:"name" yaml:"name"`
	SheetSize   SheetSize         `json:"sheet_size" yaml:"sheet_size"`
	Orientation Orientation       `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Margins     Margins           `json:"margins" yaml:"margins"`
	TitleBlock  *TitleBlock       `json:"title_block,omitempty" yaml:"title_block,omitempty"`
	Lines       []LineEntity      `json:"lines" yaml:"lines"`
	Texts       []TextEntity      `json:"texts" yaml:"texts"`
	Dimensions  []DimensionEntity `json:"dimensions" yaml:"dimensions"`
}

// Drawing is a read-only snapshot of a drawing's layout, line work,
// dimensioning, text and title block. All accessors return copies so a
// Drawing can be shared between concurrently running validators.
type Drawing struct {
	name        string
	sheetSize   SheetSize
	orientation Orientation
	margins     Margins
	titleBlock  *TitleBlock
	lines       []LineEntity
	texts       []TextEntity
	dimensions  []DimensionEntity
}

// NewDrawing freezes spec into a Drawing. The spec may be reused or
// modified afterwards without affecting the returned value.
func NewDrawing(spec DrawingSpec) *Drawing {
	orientation := spec.Orientation
	if orientation == "" {
		orientation = Landscape
	}

	d := &Drawing{
		name:        spec.Name,
		sheetSize:   spec.SheetSize,
		orientation: orientation,
		margins:     spec.Margins,
		lines:       slices.Clone(spec.Lines),
		texts:       slices.Clone(spec.Texts),
		dimensions:  slices.Clone(spec.Dimensions),
	}
	if spec.TitleBlock != nil {
		d.titleBlock = &TitleBlock{Fields: maps.Clone(spec.TitleBlock.Fields)}
	}
	return d
}

// Name returns the drawing's identifying name, which may be empty.
func (d *Drawing) Name() string { return d.name }

// SheetSize returns the declared sheet size.
func (d *Drawing) SheetSize() SheetSize { return d.sheetSize }

// Orientation returns the sheet orientation.
func (d *Drawing) Orientation() Orientation { return d.orientation }

// Margins returns the border margins.
func (d *Drawing) Margins() Margins { return d.margins }

// TitleBlock returns a copy of the title block and whether one is present.
func (d *Drawing) TitleBlock() (TitleBlock, bool) {
	if d.titleBlock == nil {
		return TitleBlock{}, false
	}
	return TitleBlock{Fields: maps.Clone(d.titleBlock.Fields)}, true
}

// Lines returns a copy of the line entities in drawing order.
func (d *Drawing) Lines() []LineEntity { return slices.Clone(d.lines) }

// Texts returns a copy of the text entities in drawing order.
func (d *Drawing) Texts() []TextEntity { return slices.Clone(d.texts) }

// Dimensions returns a copy of the dimension entities in drawing order.
func (d *Drawing) Dimensions() []DimensionEntity { return slices.Clone(d.dimensions) }

// Spec converts the drawing back into a DrawingSpec, for example to
// serialise it alongside a report.
func (d *Drawing) Spec() DrawingSpec {
	spec := DrawingSpec{
		Name:        d.name,
		SheetSize:   d.sheetSize,
		Orientation: d.orientation,
		Margins:     d.margins,
		Lines:       d.Lines(),
		Texts:       d.Texts(),
		Dimensions:  d.Dimensions(),
	}
	if tb, ok := d.TitleBlock(); ok {
		spec.TitleBlock = &tb
	}
	return spec
}
