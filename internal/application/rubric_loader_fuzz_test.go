package application

import (
	"errors"
	"math"
	"testing"

	"github.com/ahrav/go-as1100/internal/domain"
)

// FuzzRubricLoader_Load feeds arbitrary documents to the loader. It must
// never panic, and it must either build a usable registry or return an
// error matching domain.ErrInvalidConfiguration.
func FuzzRubricLoader_Load(f *testing.F) {
	// Seed corpus with valid and invalid documents to guide the fuzzer.
	f.Add(string(DefaultRubric()))
	f.Add(minimalRubric)
	f.Add(`version: "1.0.0
metadata:
  name: test"`)
	f.Add(`version: 1
metadata: "invalid"
validators: "should be array"`)
	f.Add(`version: "1.0.0"
metadata: {name: x}
validators:
  - {name: a, type: manual_review, weight: .nan, pass_threshold: 1, automated: false}`)
	f.Add("")

	loader, err := NewRubricLoader(NewDefaultValidatorFactoryRegistry())
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, doc string) {
		registry, err := loader.Load([]byte(doc))
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidConfiguration) {
				t.Fatalf("error does not match ErrInvalidConfiguration: %v", err)
			}
			return
		}
		if registry.Len() == 0 {
			t.Fatal("loaded an empty registry")
		}
		if w := registry.Rubric().AutomatedWeight(); !(w > 0) {
			t.Fatalf("loaded a rubric with automated weight %v", w)
		}
		var total float64
		for _, c := range registry.Rubric().Criteria {
			total += c.Weight
		}
		if math.Abs(total-1) > weightSumTolerance {
			t.Fatalf("loaded a rubric with total weight %v", total)
		}
	})
}
