package validation

import (
	"errors"
	"testing"

	"smartfix/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Category string `validate:"required"`
	Urgency  string `validate:"omitempty,oneof=low medium high"`
	Rating   int    `validate:"min=1,max=5"`
}

func TestValidateStruct(t *testing.T) {
	testCases := []struct {
		name        string
		input       testStruct
		expectError bool
		expectedMsg string
	}{
		{
			name:  "Success",
			input: testStruct{Category: "plumbing", Urgency: "high", Rating: 4},
		},
		{
			name:        "Failure: missing category",
			input:       testStruct{Rating: 3},
			expectError: true,
			expectedMsg: "field 'Category' is required",
		},
		{
			name:        "Failure: bad urgency",
			input:       testStruct{Category: "x", Urgency: "now", Rating: 3},
			expectError: true,
			expectedMsg: "field 'Urgency' must be one of [low medium high]",
		},
		{
			name:        "Failure: rating too high",
			input:       testStruct{Category: "x", Rating: 6},
			expectError: true,
			expectedMsg: "field 'Rating' must be at most 5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.input)
			if !tc.expectError {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))

			var vErr *apperrors.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, vErr.Errors, tc.expectedMsg)
		})
	}
}
