// Package ai wraps the generative model behind a small interface so the
// advisor does not depend on a particular SDK. A Handle carries either a
// ready Generator or the reason it could not be built at startup.
package ai

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"
)

// ErrNotReady is returned by Handle.Generator when the model client failed to initialize.
var ErrNotReady = eris.New("ai: client not ready")

// Request is one structured-output generation.
type Request struct {
	Prompt      string
	Temperature float32
	// JSON asks the backend for an application/json response.
	JSON   bool
	Schema *Schema
}

type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Handle is set once at startup and only read afterwards.
type Handle struct {
	gen Generator
	err error
}

func Ready(gen Generator) Handle {
	if gen == nil {
		return Unavailable(eris.New("ai: nil generator"))
	}
	return Handle{gen: gen}
}

func Unavailable(err error) Handle {
	if err == nil {
		err = ErrNotReady
	}
	return Handle{err: err}
}

func (h Handle) IsReady() bool { return h.gen != nil }

// Err is the initialization failure, nil when ready.
func (h Handle) Err() error { return h.err }

func (h Handle) Generator() (Generator, error) {
	if h.gen == nil {
		return nil, eris.Wrap(ErrNotReady, errString(h.err))
	}
	return h.gen, nil
}

func errString(err error) string {
	if err == nil {
		return "uninitialized"
	}
	return err.Error()
}

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kujang_ai_requests_total",
			Help: "Generative model calls by backend and outcome",
		},
		[]string{"backend", "result"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kujang_ai_request_duration_seconds",
			Help:    "Generative model call latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"backend"},
	)
)

// Instrumented records latency and outcome of every call to the wrapped generator.
func Instrumented(gen Generator) Generator {
	return instrumented{Generator: gen}
}

type instrumented struct {
	Generator
}

func (i instrumented) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := i.Generator.Generate(ctx, req)
	requestDuration.WithLabelValues(i.Name()).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	requestsTotal.WithLabelValues(i.Name(), result).Inc()
	return out, err
}
