package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-as1100/internal/ports"
	"github.com/ahrav/go-as1100/internal/testutils"
)

func TestManualReviewValidator_Validate(t *testing.T) {
	v, err := NewManualReviewValidator("views_projection", ManualReviewConfig{})
	require.NoError(t, err)

	result := v.Validate(testutils.CompliantDrawing())

	assert.True(t, result.ManualReview)
	assert.False(t, result.Passed)
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"views_projection requires manual review"}, result.Warnings)
}

func TestManualReviewValidator_ResultsAreIndependent(t *testing.T) {
	v, err := NewManualReviewFromSpec(ports.ValidatorSpec{
		Name:       "manufacturing_info",
		Parameters: map[string]any{"description": "check surface finish and tolerances"},
	})
	require.NoError(t, err)

	first := v.Validate(nil)
	first.Warnings[0] = "mutated"

	second := v.Validate(nil)
	assert.Equal(t, []string{
		"manufacturing_info requires manual review",
		"check surface finish and tolerances",
	}, second.Warnings)
}

func TestNewManualReviewValidator_EmptyName(t *testing.T) {
	_, err := NewManualReviewValidator("", ManualReviewConfig{})
	assert.ErrorIs(t, err, ErrEmptyValidatorName)
}
