package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Budget
		wantErr  bool
	}{
		{name: "plain number", input: `150`, expected: Budget{Min: 150, Max: 150}},
		{name: "range", input: `{"min": 100, "max": 250}`, expected: Budget{Min: 100, Max: 250}},
		{name: "invalid", input: `"cheap"`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var b Budget
			err := json.Unmarshal([]byte(tc.input), &b)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b)
		})
	}
}

func TestRequestStatus_HasAssignee(t *testing.T) {
	assigned := map[RequestStatus]bool{
		StatusPending:           false,
		StatusAccepted:          true,
		StatusInProgress:        true,
		StatusCompleted:         true,
		StatusApproved:          true,
		StatusRevisionRequested: true,
		StatusCancelled:         false,
	}
	for status, want := range assigned {
		assert.Equal(t, want, status.HasAssignee(), string(status))
		assert.True(t, status.Valid())
	}
	assert.False(t, RequestStatus("open").Valid())
}

func TestGeoPoint(t *testing.T) {
	p := NewGeoPoint(-1.2921, 36.8219)
	assert.True(t, p.Valid())
	assert.Equal(t, 36.8219, p.Lng())
	assert.Equal(t, -1.2921, p.Lat())
	assert.False(t, GeoPoint{Coordinates: []float64{200, 0}}.Valid())
	assert.False(t, GeoPoint{}.Valid())
}

func TestProvider_Offers(t *testing.T) {
	p := Provider{Services: []string{"Plumbing", "electrical"}}
	assert.True(t, p.Offers("plumbing"))
	assert.True(t, p.Offers(" Electrical "))
	assert.False(t, p.Offers("cleaning"))
}

func TestReview_Counts(t *testing.T) {
	assert.True(t, (&Review{Status: ReviewActive, State: StateActive}).Counts())
	assert.False(t, (&Review{Status: ReviewFlagged, State: StateActive}).Counts())
	assert.False(t, (&Review{Status: ReviewActive, State: StateDeleted}).Counts())
}
