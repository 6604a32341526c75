package application

import (
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"
)

// RegisterRubricValidators registers custom validation functions with
// the validator instance for use in rubric configuration validation.
// RegisterRubricValidators adds semver, unitinterval and validatortype
// validators that can be referenced in struct tags. validatortype accepts
// exactly the names in types.
// RegisterRubricValidators returns an error if any validator registration
// fails.
func RegisterRubricValidators(v *validator.Validate, types []string) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	if err := v.RegisterValidation("unitinterval", validateUnitInterval); err != nil {
		return fmt.Errorf("failed to register unitinterval validator: %w", err)
	}

	known := slices.Clone(types)
	if err := v.RegisterValidation("validatortype", func(fl validator.FieldLevel) bool {
		return slices.Contains(known, fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register validatortype validator: %w", err)
	}

	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	var rest string
	n, _ := fmt.Sscanf(value, "%d.%d.%d%s", &major, &minor, &patch, &rest)
	return n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateUnitInterval reports whether a float field is finite and in
// [0, 1]. NaN slips through min/max tags, so thresholds use this instead.
func validateUnitInterval(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		return isUnit(field.Float())
	default:
		return false
	}
}

func isUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
