package application

import (
	"fmt"

	"github.com/ahrav/go-as1100/internal/domain"
)

// ConfidenceGate decides whether automatically extracted drawing
// parameters can be used without human review.
//
// The gate is total and pure: any confidence, including NaN, yields a
// decision. Parameters are used automatically exactly when
// confidence >= threshold; a NaN on either side falls back to manual
// input.
type ConfidenceGate struct{}

// Decide routes an extraction result. The reason names both the
// confidence and the threshold that were compared.
func (ConfidenceGate) Decide(result domain.ExtractionResult, threshold float64) domain.GateDecision {
	use := result.Confidence >= threshold

	var reason string
	if use {
		reason = fmt.Sprintf("extraction confidence %g meets threshold %g: using extracted parameters", result.Confidence, threshold)
	} else {
		reason = fmt.Sprintf("extraction confidence %g below threshold %g: manual input required", result.Confidence, threshold)
	}

	return domain.GateDecision{
		UseAutomatic: use,
		Reason:       reason,
		Confidence:   result.Confidence,
		Threshold:    threshold,
	}
}
