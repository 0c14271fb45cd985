package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kujang-advisor/api/internal/advisor"
	"kujang-advisor/api/internal/advisor/types"
	"kujang-advisor/api/internal/config"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	vendorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"products": [{"name": "Urea Kujang"}]}}`))
	}))
	t.Cleanup(vendorSrv.Close)

	cfg := &config.Config{}
	cfg.AI.Backend = backend
	cfg.AI.Model = "gemini-2.5-flash"
	cfg.AI.Timeout = 5 * time.Second
	cfg.AI.Temperature = 0.2
	cfg.Vendor.URL = vendorSrv.URL
	cfg.Vendor.Timeout = time.Second
	cfg.Vendor.Limit = 5
	return cfg
}

func TestNewApp_MockBackend(t *testing.T) {
	a := newApp(context.Background(), testConfig(t, "mock"), false)
	defer a.Close()

	require.True(t, a.ai.IsReady())
	assert.Nil(t, a.history())

	res, err := a.advisor.Calculate(context.Background(), types.CalculationRequest{Crop: "padi", LandSize: 2, Target: 6})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ValidationMessage)
	assert.NotNil(t, res.KujangRecommendations)
}

func TestNewApp_UnavailableBackends(t *testing.T) {
	for _, backend := range []string{"gemini", "unknown"} {
		t.Run(backend, func(t *testing.T) {
			a := newApp(context.Background(), testConfig(t, backend), false)
			defer a.Close()

			assert.False(t, a.ai.IsReady())
			_, err := a.advisor.Calculate(context.Background(), types.CalculationRequest{Crop: "padi", LandSize: 2, Target: 6})
			require.Error(t, err)
			assert.Equal(t, advisor.KindNotReady, advisor.KindOf(err))
			assert.Contains(t, err.Error(), "belum siap")
		})
	}
}

func TestNewApp_VertexWithoutProject(t *testing.T) {
	cfg := testConfig(t, "vertex")
	cfg.AI.Project = ""

	a := newApp(context.Background(), cfg, false)
	defer a.Close()
	assert.False(t, a.ai.IsReady())
	assert.Error(t, a.ai.Err())
}

func TestNewApp_HistoryDisabledWithoutDatabase(t *testing.T) {
	a := newApp(context.Background(), testConfig(t, "mock"), true)
	defer a.Close()
	assert.Nil(t, a.repo)
	assert.Nil(t, a.history())
}
