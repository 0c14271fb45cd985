// Package mock is a deterministic generator for local development without
// Google Cloud credentials. It answers every prompt with the same
// well-formed recommendation.
package mock

import (
	"context"

	"go.uber.org/zap"

	"kujang-advisor/api/internal/ai"
)

const Response = `{
  "validation_message": "Target panen Anda masih dalam batas wajar. (mode pengembangan: jawaban contoh)",
  "is_realistic": true,
  "kujang_recommendations": [
    {"product_name": "Urea Kujang", "dosage_kg": 250, "reason": "Sumber nitrogen utama untuk fase vegetatif."}
  ],
  "generic_recommendations": [
    {"product_name": "SP-36", "dosage_kg": 100, "reason": "Menambah fosfor untuk perakaran."},
    {"product_name": "KCl", "dosage_kg": 75, "reason": "Kalium untuk pengisian bulir."}
  ]
}`

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "mock" }

func (e *Engine) Generate(ctx context.Context, req ai.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	zap.L().Debug("mock generator invoked", zap.Int("prompt_len", len(req.Prompt)))
	return Response, nil
}
