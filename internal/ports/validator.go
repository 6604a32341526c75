// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"github.com/ahrav/go-as1100/internal/domain"
)

// Validator inspects one compliance dimension of a drawing.
//
// Validators must be pure: the same Drawing always yields the same
// ValidationResult. They must not modify the drawing and must not panic on
// a structurally valid one. Missing optional elements such as an absent
// title block are reported through the result's Errors, never as a fault.
// Validators hold no mutable state and are safe for concurrent use.
type Validator interface {
	// Name returns the validator's unique name within the rubric.
	Name() string

	// Validate scores the drawing against this validator's rule set.
	//
	// Example:
	//
	//	result := validator.Validate(drawing)
	//	if !result.Passed {
	//	    for _, msg := range result.Errors {
	//	        fmt.Println(msg)
	//	    }
	//	}
	Validate(drawing *domain.Drawing) domain.ValidationResult
}

// ValidatorSpec carries the rubric data a factory needs to build a
// validator: its name, its own pass threshold and its type-specific
// parameters as decoded from configuration.
type ValidatorSpec struct {
	Name          string
	Type          string
	Standard      string
	PassThreshold float64
	Parameters    map[string]any
}

// ValidatorFactory builds a configured Validator from a ValidatorSpec.
type ValidatorFactory func(spec ValidatorSpec) (Validator, error)

// ValidatorFactoryRegistry resolves validator types to factories while a
// rubric is being loaded.
type ValidatorFactoryRegistry interface {
	// CreateValidator builds a validator of the spec's type.
	CreateValidator(spec ValidatorSpec) (Validator, error)

	// Types returns the registered validator type names, sorted.
	Types() []string
}
