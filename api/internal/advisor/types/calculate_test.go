package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculationRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CalculationRequest
		wantErr bool
	}{
		{name: "valid", req: CalculationRequest{Crop: "padi", LandSize: 2, Target: 6}},
		{name: "negative values are allowed", req: CalculationRequest{Crop: "jagung", LandSize: -1, Target: -3}},
		{name: "blank crop", req: CalculationRequest{Crop: "  ", LandSize: 1, Target: 1}, wantErr: true},
		{name: "nan land size", req: CalculationRequest{Crop: "padi", LandSize: math.NaN(), Target: 1}, wantErr: true},
		{name: "inf target", req: CalculationRequest{Crop: "padi", LandSize: 1, Target: math.Inf(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEncodesEmptyLists(t *testing.T) {
	var r RecommendationResult
	r.Normalize()

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"validation_message":"","is_realistic":false,"kujang_recommendations":[],"generic_recommendations":[]}`, string(b))
}

func TestFailureResult(t *testing.T) {
	b, err := json.Marshal(FailureResult("Format data input tidak valid."))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"validation_message": "Format data input tidak valid.",
		"is_realistic": false,
		"kujang_recommendations": [],
		"generic_recommendations": []
	}`, string(b))
}
