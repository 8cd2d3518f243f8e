// Package estimate runs the per-channel pipeline: posterior update, correlated
// sampling, then summary statistics.
package estimate

import (
	"context"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"budget-brain/core/determinism"
	"budget-brain/core/posterior"
	"budget-brain/core/sampler"
	"budget-brain/core/summary"
	"budget-brain/core/types"
	"budget-brain/internal/errors"
	"budget-brain/internal/logging"
)

// seedNamespace scopes per-channel seed derivation
const seedNamespace = "budget-brain/channel"

// Engine estimates channel metrics. It holds no mutable state after
// construction and is safe for concurrent use.
type Engine struct {
	opts     Options
	validate *validator.Validate
}

// NewEngine validates opts and returns an Engine
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.opts
}

// Estimate runs the pipeline for one channel using the configured seed
func (e *Engine) Estimate(in types.ChannelInput) (*types.ChannelResult, error) {
	return e.estimate(in, e.opts.Seed)
}

// EstimateAll runs every channel concurrently. Each channel samples with a seed
// derived from the run seed and its name, so results do not depend on input
// order or scheduling. The first failure cancels the remaining channels.
func (e *Engine) EstimateAll(ctx context.Context, inputs []types.ChannelInput) (*determinism.StableMap[string, *types.ChannelResult], error) {
	if len(inputs) == 0 {
		return nil, errors.Input("no channels to estimate")
	}
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if _, dup := seen[in.Channel]; dup {
			return nil, errors.Inputf("duplicate channel %q", in.Channel)
		}
		seen[in.Channel] = struct{}{}
	}

	results := determinism.NewStableMap[string, *types.ChannelResult]()
	seeds := determinism.NewSeedDeriver(seedNamespace, e.opts.Seed)

	g, ctx := errgroup.WithContext(ctx)
	if e.opts.Workers > 0 {
		g.SetLimit(e.opts.Workers)
	}
	for _, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.estimate(in, seeds.Derive(in.Channel))
			if err != nil {
				return errors.Wrapf(errors.TypeOf(err), err, "channel %q", in.Channel)
			}
			results.Set(in.Channel, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.Debug("estimated channels", zap.Int("count", results.Len()), zap.Int64("run_seed", e.opts.Seed))
	return results, nil
}

func (e *Engine) estimate(in types.ChannelInput, seed int64) (*types.ChannelResult, error) {
	if err := e.validateInput(in); err != nil {
		return nil, err
	}
	log := logging.ForChannel("estimate", in.Channel)

	post := sampler.Posteriors{
		CPM: posterior.Lognormal(in.Observation(types.MetricCPM), e.opts.Priors.forMetric(types.MetricCPM)),
		CTR: posterior.Rate(in.Observation(types.MetricCTR), e.opts.Priors.forMetric(types.MetricCTR)),
		CVR: posterior.Rate(in.Observation(types.MetricCVR), e.opts.Priors.forMetric(types.MetricCVR)),
	}
	log.Debug("posterior update",
		zap.Float64("cpm_mu", post.CPM.Location), zap.Float64("cpm_sd", post.CPM.Scale),
		zap.Float64("ctr_mu", post.CTR.Location), zap.Float64("ctr_sd", post.CTR.Scale),
		zap.Float64("cvr_mu", post.CVR.Location), zap.Float64("cvr_sd", post.CVR.Scale),
	)

	samples, err := sampler.Sample(e.opts.SampleCount, post, e.opts.Model, seed)
	if err != nil {
		return nil, err
	}

	result := &types.ChannelResult{
		Channel: in.Channel,
		Seed:    seed,
		Metrics: make(map[types.Metric]types.MetricSummary, 3),
		Posteriors: map[types.Metric]types.PosteriorParams{
			types.MetricCPM: post.CPM.Record(),
			types.MetricCTR: post.CTR.Record(),
			types.MetricCVR: post.CVR.Record(),
		},
		Diagnostics: types.Diagnostics{
			CTRCVRCorrelation: sampler.Correlation(samples.Column(types.MetricCTR), samples.Column(types.MetricCVR)),
			SampleCount:       samples.Len(),
		},
	}

	for _, m := range types.Metrics() {
		s, err := summary.Summarize(samples.Column(m), e.opts.Summary)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInternal, err, "summarize %s", m)
		}
		result.Metrics[m] = s
		log.Debug("metric summary",
			zap.String("metric", string(m)),
			zap.Float64("p50", s.P50),
			zap.Float64("certainty_pct", s.CertaintyPct),
			zap.Float64("stability_pct", s.StabilityPct),
		)
	}
	return result, nil
}

// validateInput rejects inputs that have no safe clamped interpretation.
// Boundary values (a zero rate, a zero dispersion) are accepted and clamped
// by the posterior transforms.
func (e *Engine) validateInput(in types.ChannelInput) error {
	scalars := in.Scalars()
	for _, name := range determinism.SortedKeys(scalars) {
		v := scalars[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Inputf("%s must be finite, got %v", name, v).WithContext("channel", in.Channel)
		}
	}
	if err := e.validate.Struct(in); err != nil {
		return errors.Wrap(errors.TypeInput, "invalid channel input", err).WithContext("channel", in.Channel)
	}
	return nil
}
