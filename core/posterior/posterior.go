// Package posterior turns an observed (mean, dispersion) pair into a Normal
// posterior over a transformed representation of the metric: logit space for
// rates, log space for cost.
package posterior

import (
	"math"

	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// DefaultPriorScale is the prior standard deviation, in transformed units,
// used when a Prior does not set one.
const DefaultPriorScale = 1.0

// Params is a Normal(Location, Scale) over the transformed metric
type Params struct {
	Location float64 `json:"location"`
	Scale    float64 `json:"scale"`
}

// Variance returns Scale squared
func (p Params) Variance() float64 {
	return p.Scale * p.Scale
}

// Finite reports whether both parameters are finite
func (p Params) Finite() bool {
	return !math.IsNaN(p.Location) && !math.IsInf(p.Location, 0) &&
		!math.IsNaN(p.Scale) && !math.IsInf(p.Scale, 0)
}

// Record converts to the serialisable result type
func (p Params) Record() types.PosteriorParams {
	return types.PosteriorParams{Location: p.Location, Scale: p.Scale}
}

// Prior is an optional Normal prior in transformed space.
// A nil Location centres the prior on the observation itself.
type Prior struct {
	Location *float64 `json:"location,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
}

// PriorAt returns a prior centred at loc with the given scale
func PriorAt(loc, scale float64) *Prior {
	return &Prior{Location: &loc, Scale: scale}
}

// Validate rejects a non-finite location and a negative or non-finite scale.
// A zero scale is valid and means DefaultPriorScale.
func (p *Prior) Validate() error {
	if p == nil {
		return nil
	}
	if p.Location != nil && (math.IsNaN(*p.Location) || math.IsInf(*p.Location, 0)) {
		return errors.Inputf("prior location must be finite, got %v", *p.Location)
	}
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) || p.Scale < 0 {
		return errors.Inputf("prior scale must be finite and >= 0, got %v", p.Scale)
	}
	return nil
}

// resolve fills in defaults. The prior must have passed Validate.
func (p *Prior) resolve(observed float64) (float64, float64) {
	loc, scale := observed, DefaultPriorScale
	if p == nil {
		return loc, scale
	}
	if p.Location != nil {
		loc = *p.Location
	}
	if p.Scale > 0 {
		scale = p.Scale
	}
	return loc, scale
}

// ObservedRate returns the likelihood proxy for a rate metric in logit space.
// The natural-scale std is propagated with the delta method:
// Var[logit(p)] ~ Var[p] / (m(1-m))^2.
func ObservedRate(obs types.Observation) Params {
	m := ClampProbability(obs.Mean)
	s := math.Max(obs.Dispersion, MinRateStd)
	denom := math.Max(m*(1-m), ProbabilityEpsilon)
	return Params{
		Location: Logit(m),
		Scale:    s / denom,
	}
}

// ObservedLognormal returns the likelihood proxy for a cost metric in log
// space using exact lognormal moment matching from (mean, cv).
func ObservedLognormal(obs types.Observation) Params {
	cv := math.Max(obs.Dispersion, MinCV)
	varLog := math.Log1p(cv * cv)
	return Params{
		Location: SafeLog(obs.Mean) - 0.5*varLog,
		Scale:    math.Sqrt(varLog),
	}
}

// Rate is the logit-space conjugate update for CTR and CVR
func Rate(obs types.Observation, prior *Prior) Params {
	return update(ObservedRate(obs), prior)
}

// Lognormal is the log-space conjugate update for CPM
func Lognormal(obs types.Observation, prior *Prior) Params {
	return update(ObservedLognormal(obs), prior)
}

// ForMetric dispatches to Rate or Lognormal based on the metric's support
func ForMetric(m types.Metric, obs types.Observation, prior *Prior) Params {
	if m.IsRate() {
		return Rate(obs, prior)
	}
	return Lognormal(obs, prior)
}

// update combines a Normal likelihood proxy with a Normal prior
func update(observed Params, prior *Prior) Params {
	muPrior, sdPrior := prior.resolve(observed.Location)
	varPrior := sdPrior * sdPrior
	varObs := observed.Variance()

	precision := 1/varPrior + 1/varObs
	varPost := 1 / precision
	muPost := varPost * (muPrior/varPrior + observed.Location/varObs)
	return Params{
		Location: muPost,
		Scale:    math.Sqrt(varPost),
	}
}
