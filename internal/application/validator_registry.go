package application

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/go-as1100/infrastructure/validators"
	"github.com/ahrav/go-as1100/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.ValidatorFactoryRegistry = (*DefaultValidatorFactoryRegistry)(nil)

// DefaultValidatorFactoryRegistry implements the ValidatorFactoryRegistry
// interface providing a factory for creating validators based on type and
// configuration. It supports registration of additional factories before a
// rubric is loaded; the Registry built from a rubric is frozen regardless.
type DefaultValidatorFactoryRegistry struct {
	// factories maps validator type strings to their factory functions.
	factories map[string]ports.ValidatorFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewDefaultValidatorFactoryRegistry creates a registry with the AS 1100
// rule sets pre-registered: sheet_layout, line_standards, dimensioning,
// text_symbols and manual_review.
func NewDefaultValidatorFactoryRegistry() *DefaultValidatorFactoryRegistry {
	return &DefaultValidatorFactoryRegistry{
		factories: map[string]ports.ValidatorFactory{
			"sheet_layout":   validators.NewSheetLayoutFromSpec,
			"line_standards": validators.NewLineStandardsFromSpec,
			"dimensioning":   validators.NewDimensioningFromSpec,
			"text_symbols":   validators.NewTextSymbolsFromSpec,
			ManualReviewType: validators.NewManualReviewFromSpec,
		},
	}
}

// CreateValidator creates a new validator instance based on the spec's
// type, name and parameters.
func (r *DefaultValidatorFactoryRegistry) CreateValidator(spec ports.ValidatorSpec) (ports.Validator, error) {
	r.mu.RLock()
	factory, exists := r.factories[spec.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ports.ErrUnknownValidatorType, spec.Type)
	}

	if spec.Name == "" {
		return nil, fmt.Errorf("validator name cannot be empty")
	}

	v, err := factory(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator %s of type %s: %w", spec.Name, spec.Type, err)
	}

	return v, nil
}

// RegisterValidatorFactory registers a factory function for a validator
// type, replacing any existing registration.
func (r *DefaultValidatorFactoryRegistry) RegisterValidatorFactory(validatorType string, factory ports.ValidatorFactory) error {
	if validatorType == "" {
		return fmt.Errorf("validator type cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[validatorType] = factory
	return nil
}

// Types returns all registered validator types, sorted.
func (r *DefaultValidatorFactoryRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)

	return types
}
