package testutils

import (
	"sync/atomic"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

var _ ports.Validator = (*StubValidator)(nil)

// StubValidator returns a fixed score regardless of the drawing. It is
// used to exercise aggregation and engine behaviour without depending on
// the concrete rule sets.
type StubValidator struct {
	name      string
	score     float64
	threshold float64
	panicMsg  string
	calls     atomic.Int64
}

// NewStubValidator creates a StubValidator that always scores score and
// passes when score >= threshold.
func NewStubValidator(name string, score, threshold float64) *StubValidator {
	return &StubValidator{name: name, score: score, threshold: threshold}
}

// NewPanickingValidator creates a StubValidator that panics with msg on
// every call, simulating a validator execution fault.
func NewPanickingValidator(name, msg string) *StubValidator {
	return &StubValidator{name: name, panicMsg: msg}
}

// Name implements ports.Validator.
func (s *StubValidator) Name() string { return s.name }

// Validate implements ports.Validator.
func (s *StubValidator) Validate(*domain.Drawing) domain.ValidationResult {
	s.calls.Add(1)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return domain.MustValidationResult(domain.ResultInput{
		Score:         s.score,
		PassThreshold: s.threshold,
	})
}

// Calls returns how many times Validate has been invoked.
func (s *StubValidator) Calls() int64 { return s.calls.Load() }

// StubFactory returns a ports.ValidatorFactory that builds StubValidators
// scoring score, using the spec's name and pass threshold.
func StubFactory(score float64) ports.ValidatorFactory {
	return func(spec ports.ValidatorSpec) (ports.Validator, error) {
		return NewStubValidator(spec.Name, score, spec.PassThreshold), nil
	}
}
