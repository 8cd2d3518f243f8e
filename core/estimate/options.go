package estimate

import (
	"budget-brain/core/posterior"
	"budget-brain/core/sampler"
	"budget-brain/core/summary"
	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// DefaultSampleCount is the number of joint draws per channel
const DefaultSampleCount = 5000

// Priors holds an optional prior per metric. A nil prior centres on the observation.
type Priors struct {
	CPM *posterior.Prior `json:"cpm,omitempty"`
	CTR *posterior.Prior `json:"ctr,omitempty"`
	CVR *posterior.Prior `json:"cvr,omitempty"`
}

// Options configure an Engine
type Options struct {
	// SampleCount is the number of joint Monte Carlo draws
	SampleCount int `json:"sample_count"`

	// Seed drives the sampler. EstimateAll derives one seed per channel from it.
	Seed int64 `json:"seed"`

	// Workers bounds how many channels EstimateAll runs at once
	Workers int `json:"workers"`

	// Model is the latent correlation model
	Model sampler.LatentModel `json:"model"`

	// Summary tunes the certainty scores
	Summary summary.Options `json:"summary"`

	// Priors are optional transformed-space priors
	Priors Priors `json:"priors"`
}

// DefaultOptions returns the stock configuration
func DefaultOptions() Options {
	return Options{
		SampleCount: DefaultSampleCount,
		Seed:        123,
		Workers:     4,
		Model:       sampler.DefaultLatentModel(),
		Summary:     summary.DefaultOptions(),
	}
}

// Validate checks options that have no safe fallback
func (o Options) Validate() error {
	if o.SampleCount <= 0 {
		return errors.Inputf("sample_count must be positive, got %d", o.SampleCount)
	}
	if o.Workers < 0 {
		return errors.Inputf("workers must be >= 0, got %d", o.Workers)
	}
	if err := o.Model.Validate(); err != nil {
		return err
	}
	for _, m := range types.Metrics() {
		if err := o.Priors.forMetric(m).Validate(); err != nil {
			return errors.Wrapf(errors.TypeInput, err, "%s prior", m)
		}
	}
	return o.Summary.Validate()
}

func (p Priors) forMetric(m types.Metric) *posterior.Prior {
	switch m {
	case types.MetricCPM:
		return p.CPM
	case types.MetricCTR:
		return p.CTR
	default:
		return p.CVR
	}
}
