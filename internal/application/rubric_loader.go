package application

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

//go:embed configs/as1100_rubric.yaml
var defaultRubric []byte

// DefaultRubric returns the built-in AS 1100 rubric document. The returned
// slice is a copy.
func DefaultRubric() []byte {
	return bytes.Clone(defaultRubric)
}

// RubricLoader provides YAML configuration parsing and validation for
// compliance rubrics, transforming declarative YAML into a frozen Registry
// of configured validators.
// Every failure is returned as a *ports.ConfigError that matches
// domain.ErrInvalidConfiguration; callers must refuse to start on one.
type RubricLoader struct {
	// validator performs struct field validation and the custom rubric
	// tags.
	validator *validator.Validate
	// factories builds validators from their type and parameters.
	factories ports.ValidatorFactoryRegistry
}

// NewRubricLoader creates a rubric loader whose validatortype tag accepts
// the types known to factories.
// NewRubricLoader returns an error if validator registration fails.
func NewRubricLoader(factories ports.ValidatorFactoryRegistry) (*RubricLoader, error) {
	v := validator.New()

	if err := RegisterRubricValidators(v, factories.Types()); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &RubricLoader{
		validator: v,
		factories: factories,
	}, nil
}

// LoadDefaultRegistry loads the built-in rubric with the default
// validator factories.
func LoadDefaultRegistry() (*Registry, error) {
	loader, err := NewRubricLoader(NewDefaultValidatorFactoryRegistry())
	if err != nil {
		return nil, err
	}
	return loader.LoadDefault()
}

// LoadDefault loads the built-in AS 1100 rubric.
func (rl *RubricLoader) LoadDefault() (*Registry, error) {
	return rl.Load(defaultRubric)
}

// LoadFromFile loads a rubric from a YAML file.
// LoadFromFile returns a ConfigError matching ports.ErrConfigNotFound when
// the file does not exist.
func (rl *RubricLoader) LoadFromFile(path string) (*Registry, error) {
	// Clean the path to prevent directory traversal attacks.
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", ports.ErrConfigNotFound, err)
		}
		return nil, configError(cleanPath, fmt.Errorf("failed to read file: %w", err))
	}

	return rl.Load(data)
}

// LoadFromReader loads a rubric from an io.Reader.
func (rl *RubricLoader) LoadFromReader(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, configError("rubric", fmt.Errorf("failed to read data: %w", err))
	}

	return rl.Load(data)
}

// Load parses, validates and builds a rubric from YAML bytes.
func (rl *RubricLoader) Load(data []byte) (*Registry, error) {
	config, err := rl.parseYAML(data)
	if err != nil {
		return nil, configError("rubric", fmt.Errorf("failed to parse YAML: %w", err))
	}

	if err := rl.validator.Struct(config); err != nil {
		return nil, configError("rubric", fmt.Errorf("struct validation failed: %w", err))
	}

	if err := rl.validateSemantics(config); err != nil {
		return nil, configError("validators", fmt.Errorf("semantic validation failed: %w", err))
	}

	params := make([]map[string]any, len(config.Validators))
	for i, vc := range config.Validators {
		if params[i], err = decodeParameters(vc.Parameters); err != nil {
			return nil, configError("validators."+vc.Name, err)
		}
	}

	fingerprint, err := calculateConfigHash(config, params)
	if err != nil {
		return nil, configError("rubric", err)
	}

	return rl.buildRegistry(config, params, fingerprint)
}

// parseYAML unmarshals YAML onto a RubricConfig holding the defaults.
// parseYAML uses strict decoding so that misspelled keys are rejected
// instead of silently ignored.
func (rl *RubricLoader) parseYAML(data []byte) (*RubricConfig, error) {
	config := newRubricConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateSemantics applies the rules that struct tags cannot express,
// reporting every violation at once.
func (rl *RubricLoader) validateSemantics(config *RubricConfig) error {
	descs := make([]Descriptor, len(config.Validators))
	for i, vc := range config.Validators {
		descs[i] = vc.descriptor()
	}

	if verr := checkDescriptors(descs, config.settings("")); verr.HasErrors() {
		return verr
	}
	return nil
}

// buildRegistry instantiates every validator through the factory registry
// and freezes them into a Registry in document order.
func (rl *RubricLoader) buildRegistry(config *RubricConfig, params []map[string]any, fingerprint string) (*Registry, error) {
	entries := make([]RegistryEntry, 0, len(config.Validators))
	for i, vc := range config.Validators {
		v, err := rl.factories.CreateValidator(ports.ValidatorSpec{
			Name:          vc.Name,
			Type:          vc.Type,
			Standard:      vc.Standard,
			PassThreshold: vc.PassThreshold,
			Parameters:    params[i],
		})
		if err != nil {
			return nil, configError("validators."+vc.Name, err)
		}

		entries = append(entries, RegistryEntry{Descriptor: vc.descriptor(), Validator: v})
	}

	registry, err := NewRegistry(config.settings(fingerprint), entries...)
	if err != nil {
		return nil, configError("validators", err)
	}
	return registry, nil
}

// decodeParameters converts a validator's parameters node to a map. An
// absent parameters block yields nil.
func decodeParameters(node yaml.Node) (map[string]any, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	var params map[string]any
	if err := node.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	return params, nil
}

func (vc ValidatorConfig) descriptor() Descriptor {
	return Descriptor{
		Name:          vc.Name,
		Type:          vc.Type,
		Standard:      vc.Standard,
		Weight:        vc.Weight,
		PassThreshold: vc.PassThreshold,
		Automated:     vc.Automated,
	}
}

func (c *RubricConfig) settings(fingerprint string) RegistrySettings {
	return RegistrySettings{
		Name:                c.Metadata.Name,
		Version:             c.Version,
		GlobalThreshold:     c.GlobalThreshold,
		ExtractionThreshold: c.ExtractionThreshold,
		MaxConcurrency:      c.MaxConcurrency,
		Fingerprint:         fingerprint,
	}
}

// calculateConfigHash computes the SHA256 hash of a normalized rubric,
// so that semantically identical documents share a fingerprint regardless
// of key order, whitespace or comments.
func calculateConfigHash(config *RubricConfig, params []map[string]any) (string, error) {
	type entry struct {
		Descriptor `yaml:",inline"`
		Parameters map[string]any `yaml:"parameters,omitempty"`
	}
	doc := struct {
		Version             string   `yaml:"version"`
		Metadata            Metadata `yaml:"metadata"`
		GlobalThreshold     float64  `yaml:"global_threshold"`
		ExtractionThreshold float64  `yaml:"extraction_threshold"`
		MaxConcurrency      int      `yaml:"max_concurrency"`
		Validators          []entry  `yaml:"validators"`
	}{
		Version:             config.Version,
		Metadata:            config.Metadata,
		GlobalThreshold:     config.GlobalThreshold,
		ExtractionThreshold: config.ExtractionThreshold,
		MaxConcurrency:      config.MaxConcurrency,
		Validators:          make([]entry, len(config.Validators)),
	}
	for i, vc := range config.Validators {
		doc.Validators[i] = entry{Descriptor: vc.descriptor(), Parameters: params[i]}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

// configError wraps err in a ConfigError, ensuring the chain matches
// domain.ErrInvalidConfiguration.
func configError(key string, err error) error {
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		err = fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return ports.NewConfigError(key, err)
}
