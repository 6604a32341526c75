package application

import (
	"gopkg.in/yaml.v3"
)

// RubricConfig defines the complete compliance rubric and serves as the
// primary configuration entry point for the engine.
// Use RubricConfig when defining which validators run, how much each one
// weighs and which thresholds gate the drawing and the extractor.
type RubricConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the rubric
	// including name, tags, and labels for organization and discovery.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// GlobalThreshold is the weighted score a drawing must reach to be
	// accepted. Defaults to 0.95 when omitted.
	GlobalThreshold float64 `yaml:"global_threshold" validate:"unitinterval"`
	// ExtractionThreshold is the minimum extractor confidence for which
	// extracted parameters are used without review. Defaults to 0.70.
	ExtractionThreshold float64 `yaml:"extraction_threshold" validate:"unitinterval"`
	// MaxConcurrency bounds how many validators run at once. Zero lets the
	// engine choose.
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=0,max=64"`
	// Validators lists the rubric entries in display order.
	Validators []ValidatorConfig `yaml:"validators" validate:"required,min=1,dive"`
}

// Metadata provides descriptive information about a rubric to support
// organization, discovery, and operational management.
type Metadata struct {
	// Name is the human-readable identifier for this rubric.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description provides a detailed explanation of the rubric's purpose.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels that enable filtering and grouping.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
	// Labels are arbitrary key-value pairs for integration with external
	// systems.
	Labels map[string]string `yaml:"labels" validate:"max=50"`
}

// ValidatorConfig defines one weighted entry of the rubric: which rule set
// to run, how its score counts and the type-specific parameters it is
// built with.
type ValidatorConfig struct {
	// Name is the unique identifier for this validator within the rubric
	// and the key of its outcome in reports.
	Name string `yaml:"name" validate:"required,min=1,max=100"`
	// Type selects the validator implementation to instantiate and must
	// be registered with the factory registry.
	Type string `yaml:"type" validate:"required,validatortype"`
	// Standard names the AS 1100 part the validator checks against.
	Standard string `yaml:"standard" validate:"max=100"`
	// Weight is the validator's share of the full rubric.
	Weight float64 `yaml:"weight" validate:"min=0,max=1"`
	// PassThreshold is the score the validator must reach to pass.
	PassThreshold float64 `yaml:"pass_threshold" validate:"unitinterval"`
	// Automated is false for categories that need human judgment.
	Automated bool `yaml:"automated"`
	// Parameters contains type-specific configuration as flexible YAML
	// that is decoded by the validator's factory.
	Parameters yaml.Node `yaml:"parameters"`
}

// Default values applied to keys a rubric document omits.
const (
	DefaultGlobalThreshold     = 0.95
	DefaultExtractionThreshold = 0.70
)

// newRubricConfig returns a RubricConfig holding the defaults that a
// decoded document overlays.
func newRubricConfig() RubricConfig {
	return RubricConfig{
		GlobalThreshold:     DefaultGlobalThreshold,
		ExtractionThreshold: DefaultExtractionThreshold,
	}
}
