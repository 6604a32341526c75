package application

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ahrav/go-as1100/internal/domain"
)

// Verify interface compliance at compile time.
var _ domain.Aggregator = WeightedAggregator{}

// snapEpsilon is the distance from 0 or 1 within which a weighted score is
// snapped to the bound, so summation order cannot turn all-ones into
// 0.9999999999999999.
const snapEpsilon = 1e-12

// WeightedAggregator combines validator results into a ComplianceReport.
//
// The weighted score is the weighted mean of the automated validators'
// scores, renormalised over their weights and summed in rubric order so
// the result never depends on map iteration. Non-automated validators are
// listed for manual review and do not affect the score. A missing or
// malformed result for an automated validator counts as a zero score.
type WeightedAggregator struct{}

// Aggregate builds the report for one drawing. It is pure and total.
// ID, Drawing and CreatedAt are left for the caller to stamp.
func (WeightedAggregator) Aggregate(results map[string]domain.ValidationResult, rubric domain.Rubric) domain.ComplianceReport {
	report := domain.ComplianceReport{
		Validators:    make(map[string]domain.ValidatorOutcome, len(rubric.Criteria)),
		Order:         make([]string, 0, len(rubric.Criteria)),
		ThresholdUsed: rubric.Threshold,
		ManualReview:  []string{},
	}

	var weighted, totalWeight float64
	for _, c := range rubric.Criteria {
		report.Order = append(report.Order, c.Name)

		var result domain.ValidationResult
		if c.Automated {
			result = automatedResult(c.Name, results)
			weighted += result.Score * c.Weight
			totalWeight += c.Weight
		} else {
			result = manualResult(c.Name, results)
			report.ManualReview = append(report.ManualReview, c.Name)
		}

		report.Validators[c.Name] = domain.ValidatorOutcome{
			ValidationResult: result,
			Weight:           c.Weight,
			PassThreshold:    c.PassThreshold,
			Automated:        c.Automated,
			Standard:         c.Standard,
		}
	}

	if totalWeight > 0 {
		report.WeightedScore = normalizeScore(weighted / totalWeight)
	}
	report.OverallPassed = report.WeightedScore >= rubric.Threshold

	return report
}

// automatedResult returns a copy of the named result, substituting a
// failed result when it is absent or its score is not a valid unit value.
func automatedResult(name string, results map[string]domain.ValidationResult) domain.ValidationResult {
	r, ok := results[name]
	if !ok {
		return domain.MissingResult(name, nil)
	}
	if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 1 {
		return domain.MissingResult(name, fmt.Errorf("%w: %v", domain.ErrInvalidScore, r.Score))
	}
	return cloneResult(r)
}

// manualResult returns the neutral result of a manual review category,
// keeping any messages the validator produced.
func manualResult(name string, results map[string]domain.ValidationResult) domain.ValidationResult {
	r := cloneResult(results[name])
	r.Passed = false
	r.Score = 0
	r.ManualReview = true
	if !slices.ContainsFunc(r.Warnings, func(w string) bool {
		return strings.Contains(w, domain.ManualReviewMessage)
	}) {
		r.Warnings = append([]string{fmt.Sprintf("%s %s", name, domain.ManualReviewMessage)}, r.Warnings...)
	}
	return r
}

func cloneResult(r domain.ValidationResult) domain.ValidationResult {
	r.Errors = slices.Clone(r.Errors)
	if r.Errors == nil {
		r.Errors = []string{}
	}
	r.Warnings = slices.Clone(r.Warnings)
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	return r
}

// normalizeScore clamps s into [0, 1] and snaps values within snapEpsilon
// of either bound onto it.
func normalizeScore(s float64) float64 {
	switch {
	case math.IsNaN(s):
		return 0
	case s >= 1-snapEpsilon:
		return 1
	case s <= snapEpsilon:
		return 0
	default:
		return s
	}
}
