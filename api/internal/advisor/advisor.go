// Package advisor turns a farmer's crop, land size and yield target into
// fertilizer recommendations. It fetches the Pupuk Kujang catalog on a best
// effort basis, embeds it into a prompt and relays the model's structured
// answer.
package advisor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"kujang-advisor/api/internal/advisor/types"
	"kujang-advisor/api/internal/ai"
	"kujang-advisor/api/internal/vendor"
)

const (
	DefaultTimeout = 60 * time.Second
	recordTimeout  = 2 * time.Second
)

// CatalogFetcher must not fail; problems are reported as an unavailable catalog.
type CatalogFetcher interface {
	Fetch(ctx context.Context) vendor.Catalog
}

// Recorder keeps calculation history.
type Recorder interface {
	Record(ctx context.Context, rec types.CalculationRecord) error
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithTimeout bounds the model call.
func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithTemperature sets the sampling temperature sent to the model.
// Non-positive values keep the default.
func WithTemperature(t float32) Option {
	return func(a *Advisor) {
		if t > 0 {
			a.temperature = t
		}
	}
}

// WithRecorder stores every calculation, successful or not.
func WithRecorder(r Recorder) Option {
	return func(a *Advisor) { a.recorder = r }
}

// Advisor is stateless per call and safe for concurrent use.
type Advisor struct {
	ai       ai.Handle
	catalog  CatalogFetcher
	recorder Recorder
	timeout  time.Duration

	temperature float32
}

// New builds an Advisor over an AI handle that may be unavailable.
func New(h ai.Handle, catalog CatalogFetcher, opts ...Option) *Advisor {
	a := &Advisor{
		ai:      h,
		catalog: catalog,
		timeout: DefaultTimeout,

		temperature: Temperature,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Ready reports whether the model client initialized.
func (a *Advisor) Ready() bool { return a.ai.IsReady() }

// Timeout is the bound applied to each model call.
func (a *Advisor) Timeout() time.Duration { return a.timeout }

// Calculate runs the pipeline. Errors are always *Error.
func (a *Advisor) Calculate(ctx context.Context, req types.CalculationRequest) (types.RecommendationResult, error) {
	start := time.Now()
	log := zap.L().With(zap.String("request_id", RequestID(ctx)))
	log.Info("calculation request",
		zap.String("crop", req.Crop),
		zap.Float64("land_size", req.LandSize),
		zap.Float64("target", req.Target),
	)

	if err := req.Validate(); err != nil {
		return types.RecommendationResult{}, ValidationError(err)
	}

	rec := types.CalculationRecord{
		ID:        uuid.NewString(),
		RequestID: RequestID(ctx),
		CreatedAt: start.UTC(),
		Request:   req,
	}

	gen, err := a.ai.Generator()
	if err != nil {
		log.Error("ai client not ready", zap.Error(err))
		e := notReadyError(err)
		a.record(ctx, rec, nil, e, start)
		return types.RecommendationResult{}, e
	}
	rec.Backend = gen.Name()

	catalog := a.catalog.Fetch(ctx)
	rec.VendorAvailable = catalog.Available()
	log.Debug("vendor catalog",
		zap.Bool("available", catalog.Available()),
		zap.Strings("products", catalog.ProductNames()),
		zap.NamedError("reason", catalog.Reason()),
	)

	res, err := a.generate(ctx, gen, BuildPrompt(catalog.PromptText(), req))
	if err != nil {
		log.Error("ai generation failed",
			zap.String("backend", gen.Name()),
			zap.Error(err),
		)
		a.record(ctx, rec, nil, err, start)
		return types.RecommendationResult{}, err
	}

	a.record(ctx, rec, &res, nil, start)
	log.Info("calculation done",
		zap.Bool("is_realistic", res.IsRealistic),
		zap.Int("kujang", len(res.KujangRecommendations)),
		zap.Int("generic", len(res.GenericRecommendations)),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

func (a *Advisor) generate(ctx context.Context, gen ai.Generator, prompt string) (types.RecommendationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := gen.Generate(ctx, ai.Request{
		Prompt:      prompt,
		Temperature: a.temperature,
		JSON:        true,
		Schema:      ResultSchema,
	})
	if err != nil {
		return types.RecommendationResult{}, generationError(err)
	}

	var res types.RecommendationResult
	if err := json.Unmarshal([]byte(ai.StripCodeFences(raw)), &res); err != nil {
		return types.RecommendationResult{}, generationError(eris.Wrap(err, "decode model output"))
	}
	res.Normalize()
	return res, nil
}

func (a *Advisor) record(ctx context.Context, rec types.CalculationRecord, res *types.RecommendationResult, err error, start time.Time) {
	if a.recorder == nil {
		return
	}
	rec.Result = res
	if err != nil {
		rec.Error = err.Error()
	}
	rec.DurationMs = time.Since(start).Milliseconds()

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := a.recorder.Record(rctx, rec); err != nil {
		zap.L().Warn("failed to record calculation",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
	}
}
