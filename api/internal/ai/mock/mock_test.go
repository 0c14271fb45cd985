package mock

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kujang-advisor/api/internal/advisor/types"
	"kujang-advisor/api/internal/ai"
)

func TestGenerate(t *testing.T) {
	out, err := New().Generate(context.Background(), ai.Request{Prompt: "apa saja", JSON: true})
	require.NoError(t, err)

	var res types.RecommendationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.IsRealistic)
	assert.Len(t, res.KujangRecommendations, 1)
	assert.Len(t, res.GenericRecommendations, 2)
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Generate(ctx, ai.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
