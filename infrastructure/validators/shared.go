// Package validators provides the AS 1100 rule sets that implement the
// ports.Validator interface for the compliance engine.
package validators

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Standard parts referenced by the validators.
const (
	StandardGeneral    = "AS 1100.101"
	StandardMechanical = "AS 1100.201"
)

// floatEpsilon absorbs binary rounding in normative comparisons such as
// 3 x 0.35 mm, which is not exactly 1.05 in float64.
const floatEpsilon = 1e-9

// Common errors returned by validator constructors.
var (
	// ErrEmptyValidatorName is returned when attempting to create a
	// validator with an empty name.
	ErrEmptyValidatorName = errors.New("validator name cannot be empty")

	// ErrInvalidThreshold is returned when a pass threshold is outside [0, 1].
	ErrInvalidThreshold = errors.New("pass threshold must be between 0 and 1")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// folder performs Unicode case folding for caseless comparisons of font
// names and title block field names.
var folder = cases.Fold()

func fold(s string) string { return folder.String(s) }

// checkIdentity validates the name and pass threshold shared by every
// validator constructor.
func checkIdentity(name string, threshold float64) error {
	if name == "" {
		return ErrEmptyValidatorName
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// decodeParameters overlays a configuration map onto cfg, which must
// already hold the defaults. The map is round-tripped through YAML so
// that configuration keys follow the struct's yaml tags. Unknown keys are
// rejected to catch typos.
func decodeParameters(params map[string]any, cfg any) error {
	if len(params) == 0 {
		return nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse parameters: %w", err)
	}
	return nil
}

func equalMM(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance+floatEpsilon
}

func containsMM(set []float64, v, tolerance float64) bool {
	for _, s := range set {
		if equalMM(s, v, tolerance) {
			return true
		}
	}
	return false
}

// mm formats a length for messages, dropping trailing zeros.
func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "mm"
}

func ratio(passed, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(passed) / float64(total)
}
