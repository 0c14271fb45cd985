package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"kujang-advisor/api/internal/advisor"
	"kujang-advisor/api/internal/ai"
	"kujang-advisor/api/internal/ai/gemini"
	"kujang-advisor/api/internal/ai/mock"
	"kujang-advisor/api/internal/ai/vertex"
	"kujang-advisor/api/internal/config"
	"kujang-advisor/api/internal/handle"
	"kujang-advisor/api/internal/store"
	"kujang-advisor/api/internal/vendor"
)

const storeConnectTimeout = 5 * time.Second

// app holds the process-wide dependencies shared by every command.
type app struct {
	ai      ai.Handle
	advisor *advisor.Advisor
	repo    *store.CalculationRepo
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, withHistory bool) *app {
	a := &app{}
	a.ai = a.newAIHandle(ctx, cfg.AI)

	opts := []advisor.Option{
		advisor.WithTimeout(cfg.AI.Timeout),
		advisor.WithTemperature(cfg.AI.Temperature),
	}
	if withHistory && cfg.Store.DatabaseURL != "" {
		sctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		repo, err := store.Open(sctx, cfg.Store.DatabaseURL)
		cancel()
		if err != nil {
			zap.L().Warn("calculation history disabled", zap.Error(err))
		} else {
			a.repo = repo
			a.closers = append(a.closers, repo.Close)
			opts = append(opts, advisor.WithRecorder(repo))
		}
	}

	catalog := vendor.New(cfg.Vendor.URL,
		vendor.WithTimeout(cfg.Vendor.Timeout),
		vendor.WithLimit(cfg.Vendor.Limit),
	)
	a.advisor = advisor.New(a.ai, catalog, opts...)
	zap.L().Info("advisor configured",
		zap.Bool("ai_ready", a.advisor.Ready()),
		zap.Duration("ai_timeout", a.advisor.Timeout()),
		zap.String("vendor_url", cfg.Vendor.URL),
		zap.Bool("history", a.repo != nil),
	)
	return a
}

// newAIHandle builds the model client once. A failure leaves the handle
// unavailable so calculations report "belum siap" instead of crashing.
func (a *app) newAIHandle(ctx context.Context, cfg config.AIConfig) ai.Handle {
	var (
		gen ai.Generator
		err error
	)
	switch cfg.Backend {
	case "vertex":
		var e *vertex.Engine
		if e, err = vertex.New(ctx, cfg.Project, cfg.Location, cfg.Model); err == nil {
			a.closers = append(a.closers, func() { _ = e.Close() })
			gen = e
		}
	case "gemini":
		var e *gemini.Engine
		if e, err = gemini.New(ctx, cfg.APIKey, cfg.Model); err == nil {
			a.closers = append(a.closers, func() { _ = e.Close() })
			gen = e
		}
	case "mock":
		gen = mock.New()
	default:
		err = eris.Errorf("ai: unknown backend %q", cfg.Backend)
	}

	if gen == nil {
		zap.L().Error("AI client initialization failed",
			zap.String("backend", cfg.Backend),
			zap.Error(err),
		)
		return ai.Unavailable(err)
	}
	zap.L().Info("AI client ready",
		zap.String("backend", cfg.Backend),
		zap.String("model", cfg.Model),
		zap.String("project", cfg.Project),
		zap.String("location", cfg.Location),
	)
	return ai.Ready(ai.Instrumented(gen))
}

// history returns nil, not a typed nil, when no store is configured.
func (a *app) history() handle.History {
	if a.repo == nil {
		return nil
	}
	return a.repo
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
