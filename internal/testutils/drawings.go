// Package testutils provides fixtures and test doubles shared by the
// engine's package tests.
package testutils

import (
	"github.com/ahrav/go-as1100/internal/domain"
)

// CompliantTitleFields returns a title block carrying every field the
// default sheet layout rules require.
func CompliantTitleFields() map[string]string {
	return map[string]string{
		"title":          "MOUNTING BRACKET - L",
		"drawing_number": "MB-001",
		"drawn_by":       "J. SMITH",
		"date":           "2026-10-18",
		"scale":          "1:1",
		"material":       "STEEL",
	}
}

// CompliantDrawingSpec returns an A3 drawing that satisfies every
// automated AS 1100 rule set with the default configuration.
func CompliantDrawingSpec() domain.DrawingSpec {
	return domain.DrawingSpec{
		Name:        "mounting-bracket-l",
		SheetSize:   domain.SheetA3,
		Orientation: domain.Landscape,
		Margins:     domain.Margins{Left: 20, Right: 10, Top: 10, Bottom: 10},
		TitleBlock:  &domain.TitleBlock{Fields: CompliantTitleFields()},
		Lines: []domain.LineEntity{
			{Thickness: 0.5, Style: domain.StyleContinuous, Usage: domain.UsageVisible},
			{Thickness: 0.7, Style: domain.StyleContinuous, Usage: domain.UsageVisible},
			{Thickness: 0.25, Style: domain.StyleDashed, Usage: domain.UsageHidden},
			{Thickness: 0.25, Style: domain.StyleChain, Usage: domain.UsageCenter},
			{Thickness: 0.25, Style: domain.StyleContinuous, Usage: domain.UsageDimension},
			{Thickness: 0.18, Style: domain.StyleContinuous, Usage: domain.UsageExtension},
		},
		Texts: []domain.TextEntity{
			{Height: 5, FontFamily: "ISOCPEUR", Content: "MOUNTING BRACKET - L"},
			{Height: 3.5, FontFamily: "ISOCPEUR", Content: "MATERIAL: STEEL"},
			{Height: 3.5, FontFamily: "isocpeur", Content: "4x Ø8mm HOLES"},
		},
		Dimensions: []domain.DimensionEntity{
			{ArrowSize: 0.75, LineThickness: 0.25, ExtensionGap: 1, TextHeight: 3.5, DecimalPlaces: 2},
			{ArrowSize: 0.75, LineThickness: 0.25, ExtensionGap: 1.5, TextHeight: 3.5, DecimalPlaces: 2},
			{ArrowSize: 1.05, LineThickness: 0.35, ExtensionGap: 2, TextHeight: 5, DecimalPlaces: 2},
		},
	}
}

// CompliantDrawing returns CompliantDrawingSpec frozen into a Drawing.
func CompliantDrawing() *domain.Drawing {
	return domain.NewDrawing(CompliantDrawingSpec())
}

// DrawingWith returns a compliant drawing after applying mutate to its spec.
func DrawingWith(mutate func(spec *domain.DrawingSpec)) *domain.Drawing {
	spec := CompliantDrawingSpec()
	mutate(&spec)
	return domain.NewDrawing(spec)
}
