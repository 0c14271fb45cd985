// Package handle holds the HTTP handlers of the advisor API.
package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"kujang-advisor/api/internal/advisor/types"
)

// Calculator is the advisor pipeline as seen by the HTTP layer.
type Calculator interface {
	Calculate(ctx context.Context, req types.CalculationRequest) (types.RecommendationResult, error)
}

// History lists recent calculations. It is optional.
type History interface {
	Recent(ctx context.Context, limit int) ([]types.CalculationRecord, error)
}

type Handle struct {
	calc    Calculator
	history History
}

func New(calc Calculator, history History) *Handle {
	return &Handle{
		calc:    calc,
		history: history,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
