package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("rubric")
		err.AddError("missing validators")

		assert.Equal(t, "validation error for rubric: missing validators", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.Len(t, err.Errors, 1, "Should have one error")
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("rubric")
		err.AddError("negative weight")
		err.AddErrorf("duplicate validator %q", "sheet_layout")

		assert.Contains(t, err.Error(), "validation errors for rubric")
		assert.Contains(t, err.Error(), `duplicate validator "sheet_layout"`)
		assert.Len(t, err.Errors, 2, "Should have two errors")
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("rubric")

		assert.False(t, err.HasErrors(), "Should not have errors")
		assert.Empty(t, err.Errors, "Errors slice should be empty")
	})

	t.Run("matches invalid configuration", func(t *testing.T) {
		err := NewValidationError("rubric")
		err.AddError("bad")

		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})
}

func TestCommonDomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrInvalidScore, "invalid score"},
		{ErrEmptyValue, "empty value"},
		{ErrInvalidConfiguration, "invalid configuration"},
		{ErrDuplicateValidator, "duplicate validator name"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error(), "Error message mismatch")
		})
	}
}
