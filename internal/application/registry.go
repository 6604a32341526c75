package application

import (
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"
	"unicode"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

// ManualReviewType is the validator type of rubric categories that need a
// person to judge them. It is the only type allowed to be non-automated.
const ManualReviewType = "manual_review"

// Descriptor is the rubric data attached to one validator.
type Descriptor struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Standard      string  `json:"standard,omitempty"`
	Weight        float64 `json:"weight"`
	PassThreshold float64 `json:"pass_threshold"`
	Automated     bool    `json:"automated"`
}

// Criterion converts the descriptor into its domain form.
func (d Descriptor) Criterion() domain.Criterion {
	return domain.Criterion{
		Name:          d.Name,
		Weight:        d.Weight,
		PassThreshold: d.PassThreshold,
		Automated:     d.Automated,
		Standard:      d.Standard,
	}
}

// RegistryEntry pairs a Descriptor with the validator it describes.
type RegistryEntry struct {
	Descriptor
	Validator ports.Validator
}

// RegistrySettings are the rubric-wide values frozen into a Registry.
type RegistrySettings struct {
	// Name and Version identify the rubric in logs and reports.
	Name    string
	Version string

	// GlobalThreshold is the weighted score a drawing must reach.
	GlobalThreshold float64

	// ExtractionThreshold gates the use of extracted parameters.
	ExtractionThreshold float64

	// MaxConcurrency bounds parallel validator execution. Zero or less
	// selects runtime.NumCPU().
	MaxConcurrency int

	// Fingerprint is a content hash of the source configuration, if any.
	Fingerprint string
}

// Registry is the fixed, ordered set of validators the engine runs.
// It is immutable after construction and safe for concurrent use; there
// is no registration API.
type Registry struct {
	entries  []RegistryEntry
	index    map[string]int
	settings RegistrySettings
}

// NewRegistry validates the entries and freezes them, in order, into a
// Registry. All problems are reported together as a *domain.ValidationError,
// which matches domain.ErrInvalidConfiguration.
func NewRegistry(settings RegistrySettings, entries ...RegistryEntry) (*Registry, error) {
	descs := make([]Descriptor, len(entries))
	for i, e := range entries {
		descs[i] = e.Descriptor
	}

	verr := checkDescriptors(descs, settings)
	for _, e := range entries {
		if e.Validator == nil {
			verr.AddErrorf("validator %q: no implementation", e.Name)
			continue
		}
		if got := e.Validator.Name(); got != e.Name {
			verr.AddErrorf("validator %q: implementation reports name %q", e.Name, got)
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	r := &Registry{
		entries:  slices.Clone(entries),
		index:    make(map[string]int, len(entries)),
		settings: settings,
	}
	if r.settings.MaxConcurrency <= 0 {
		r.settings.MaxConcurrency = runtime.NumCPU()
	}
	for i, e := range r.entries {
		r.index[e.Name] = i
	}
	return r, nil
}

// weightSumTolerance bounds the rounding error accepted when checking that
// a rubric's weights sum to 1.
const weightSumTolerance = 1e-9

// checkDescriptors applies the rubric rules that struct tags cannot
// express: unique names, finite non-negative weights summing to 1 with a
// positive automated share, thresholds in [0, 1] and an automated flag
// that agrees with the validator type.
func checkDescriptors(descs []Descriptor, settings RegistrySettings) *domain.ValidationError {
	verr := domain.NewValidationError("rubric")

	if len(descs) == 0 {
		verr.AddError("rubric has no validators")
	}
	if !isUnit(settings.GlobalThreshold) {
		verr.AddErrorf("global threshold %v outside [0, 1]", settings.GlobalThreshold)
	}
	if !isUnit(settings.ExtractionThreshold) {
		verr.AddErrorf("extraction threshold %v outside [0, 1]", settings.ExtractionThreshold)
	}

	seen := make(map[string]struct{}, len(descs))
	var totalWeight, automatedWeight float64
	for _, d := range descs {
		switch {
		case d.Name == "":
			verr.AddError("validator with empty name")
		case strings.ContainsFunc(d.Name, unicode.IsSpace):
			verr.AddErrorf("validator %q: name must not contain whitespace", d.Name)
		}
		if _, dup := seen[d.Name]; dup {
			verr.AddErrorf("validator %q: %v", d.Name, domain.ErrDuplicateValidator)
		}
		seen[d.Name] = struct{}{}

		if !isFiniteNonNegative(d.Weight) {
			verr.AddErrorf("validator %q: weight %v must be finite and non-negative", d.Name, d.Weight)
		} else {
			totalWeight += d.Weight
			if d.Automated {
				automatedWeight += d.Weight
			}
		}
		if !isUnit(d.PassThreshold) {
			verr.AddErrorf("validator %q: pass threshold %v outside [0, 1]", d.Name, d.PassThreshold)
		}

		manual := d.Type == ManualReviewType
		if manual && d.Automated {
			verr.AddErrorf("validator %q: type %s cannot be automated", d.Name, ManualReviewType)
		}
		if !manual && !d.Automated {
			verr.AddErrorf("validator %q: only %s validators may be non-automated", d.Name, ManualReviewType)
		}
	}

	if len(descs) > 0 && (automatedWeight <= 0 || math.IsInf(automatedWeight, 0)) {
		verr.AddErrorf("automated weights must sum to a positive finite value, got %v", automatedWeight)
	}
	if len(descs) > 0 && math.Abs(totalWeight-1) > weightSumTolerance {
		verr.AddErrorf("weights must sum to 1, got %v", totalWeight)
	}
	return verr
}

// Len returns the number of validators.
func (r *Registry) Len() int { return len(r.entries) }

// Entries returns the validators in rubric order. The slice is a copy.
func (r *Registry) Entries() []RegistryEntry { return slices.Clone(r.entries) }

// Lookup returns the entry with the given name.
func (r *Registry) Lookup(name string) (RegistryEntry, bool) {
	i, ok := r.index[name]
	if !ok {
		return RegistryEntry{}, false
	}
	return r.entries[i], true
}

// Settings returns the rubric-wide settings.
func (r *Registry) Settings() RegistrySettings { return r.settings }

// Rubric returns the registry's criteria and global threshold in the form
// the aggregator consumes.
func (r *Registry) Rubric() domain.Rubric {
	criteria := make([]domain.Criterion, len(r.entries))
	for i, e := range r.entries {
		criteria[i] = e.Criterion()
	}
	return domain.Rubric{Criteria: criteria, Threshold: r.settings.GlobalThreshold}
}

// String summarises the registry for logs.
func (r *Registry) String() string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return fmt.Sprintf("%s@%s[%s]", r.settings.Name, r.settings.Version, strings.Join(names, ","))
}
