package types

import (
	"errors"
	"math"
	"strings"
	"time"
)

// CalculationRequest is the farmer's input from the form.
type CalculationRequest struct {
	Crop     string  `json:"crop"`
	LandSize float64 `json:"land_size"` // hectares
	Target   float64 `json:"target"`    // tons of harvest
}

// Validate checks shape only. Implausible values (negative area, absurd
// targets) are left to the model's realism judgement.
func (r CalculationRequest) Validate() error {
	if strings.TrimSpace(r.Crop) == "" {
		return errors.New("crop is required")
	}
	if math.IsNaN(r.LandSize) || math.IsInf(r.LandSize, 0) {
		return errors.New("land_size must be a finite number")
	}
	if math.IsNaN(r.Target) || math.IsInf(r.Target, 0) {
		return errors.New("target must be a finite number")
	}
	return nil
}

type Recommendation struct {
	ProductName string  `json:"product_name"`
	DosageKg    float64 `json:"dosage_kg"`
	Reason      string  `json:"reason"`
}

// RecommendationResult is the model's answer relayed to the caller.
// All four fields are always serialized.
type RecommendationResult struct {
	ValidationMessage      string           `json:"validation_message"`
	IsRealistic            bool             `json:"is_realistic"`
	KujangRecommendations  []Recommendation `json:"kujang_recommendations"`
	GenericRecommendations []Recommendation `json:"generic_recommendations"`
}

// Normalize replaces nil lists with empty ones so they encode as [].
func (r *RecommendationResult) Normalize() {
	if r.KujangRecommendations == nil {
		r.KujangRecommendations = []Recommendation{}
	}
	if r.GenericRecommendations == nil {
		r.GenericRecommendations = []Recommendation{}
	}
}

// FailureResult builds the fixed-shape payload used for 422 and 500 responses.
func FailureResult(message string) RecommendationResult {
	return RecommendationResult{
		ValidationMessage:      message,
		IsRealistic:            false,
		KujangRecommendations:  []Recommendation{},
		GenericRecommendations: []Recommendation{},
	}
}

// CalculationRecord is one row of calculation history.
type CalculationRecord struct {
	ID              string                `json:"id"`
	RequestID       string                `json:"request_id,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	Request         CalculationRequest    `json:"request"`
	VendorAvailable bool                  `json:"vendor_available"`
	Backend         string                `json:"backend,omitempty"`
	Result          *RecommendationResult `json:"result,omitempty"`
	Error           string                `json:"error,omitempty"`
	DurationMs      int64                 `json:"duration_ms"`
}
