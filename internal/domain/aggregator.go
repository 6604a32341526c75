package domain

// Criterion is one weighted entry of the compliance rubric.
type Criterion struct {
	// Name uniquely identifies the validator within the rubric.
	Name string `json:"name"`

	// Weight is the validator's share of the whole rubric. Weights across
	// all criteria, automated or not, sum to 1.0 in a well-formed rubric.
	Weight float64 `json:"weight"`

	// PassThreshold is the score the validator must reach to be reported
	// as passed.
	PassThreshold float64 `json:"pass_threshold"`

	// Automated is false for categories that need human judgment. They
	// are listed in reports but never contribute to the weighted score.
	Automated bool `json:"automated"`

	// Standard names the AS 1100 part the criterion checks against.
	Standard string `json:"standard,omitempty"`
}

// Rubric is the fixed, ordered set of criteria plus the global pass
// threshold. Its order is the display order of reports.
type Rubric struct {
	Criteria  []Criterion `json:"criteria"`
	Threshold float64     `json:"threshold"`
}

// AutomatedWeight returns the sum of the automated criteria's weights.
func (r Rubric) AutomatedWeight() float64 {
	var sum float64
	for _, c := range r.Criteria {
		if c.Automated {
			sum += c.Weight
		}
	}
	return sum
}

// Aggregator combines per-validator results into a ComplianceReport.
//
// Implementations must be deterministic: the iteration order of results
// must not affect the report. A criterion with no entry in results is
// scored as a failed validator rather than aborting aggregation.
type Aggregator interface {
	Aggregate(results map[string]ValidationResult, rubric Rubric) ComplianceReport
}
