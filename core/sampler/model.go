package sampler

import (
	"fmt"
	"math"

	"budget-brain/internal/errors"
)

// Loadings control how strongly each metric responds to the latent quality factor
type Loadings struct {
	CTR float64 `json:"ctr"`
	CVR float64 `json:"cvr"`
	CPM float64 `json:"cpm"`
}

// ResidualScales are the metric-specific noise standard deviations, in
// transformed units (logit for rates, log for cost)
type ResidualScales struct {
	CTR float64 `json:"ctr"`
	CVR float64 `json:"cvr"`
	CPM float64 `json:"cpm"`
}

// ResidualMode selects where residual scales come from
type ResidualMode string

const (
	// ResidualFixed uses the configured ResidualScales
	ResidualFixed ResidualMode = "fixed"

	// ResidualPosterior replaces each residual scale with that metric's
	// posterior scale, so the marginal spread tracks the observed noise
	ResidualPosterior ResidualMode = "posterior"
)

// LatentModel is the one-factor correlation model. It is a value type:
// callers pass it explicitly and may run different models side by side.
type LatentModel struct {
	Loadings  Loadings       `json:"loadings"`
	Residuals ResidualScales `json:"residuals"`
	Mode      ResidualMode   `json:"mode,omitempty"`
}

// DefaultLatentModel returns the stock co-movement assumptions
func DefaultLatentModel() LatentModel {
	return LatentModel{
		Loadings: Loadings{
			CTR: 0.40,
			CVR: 0.30,
			CPM: 0.15,
		},
		Residuals: ResidualScales{
			CTR: 0.25,
			CVR: 0.25,
			CPM: 0.20,
		},
		Mode: ResidualFixed,
	}
}

// WithLoadings returns a copy of the model with different loadings
func (m LatentModel) WithLoadings(l Loadings) LatentModel {
	m.Loadings = l
	return m
}

// WithResiduals returns a copy of the model with different residual scales
func (m LatentModel) WithResiduals(r ResidualScales) LatentModel {
	m.Residuals = r
	return m
}

// Validate checks that every coefficient is finite and residual scales are non-negative
func (m LatentModel) Validate() error {
	checks := []struct {
		name  string
		value float64
		scale bool
	}{
		{"loadings.ctr", m.Loadings.CTR, false},
		{"loadings.cvr", m.Loadings.CVR, false},
		{"loadings.cpm", m.Loadings.CPM, false},
		{"residuals.ctr", m.Residuals.CTR, true},
		{"residuals.cvr", m.Residuals.CVR, true},
		{"residuals.cpm", m.Residuals.CPM, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return errors.Inputf("latent model %s must be finite, got %v", c.name, c.value)
		}
		if c.scale && c.value < 0 {
			return errors.Inputf("latent model %s must be >= 0, got %v", c.name, c.value)
		}
	}
	switch m.Mode {
	case "", ResidualFixed, ResidualPosterior:
	default:
		return errors.Inputf("unknown residual mode %q", string(m.Mode))
	}
	return nil
}

// String implements fmt.Stringer
func (m LatentModel) String() string {
	return fmt.Sprintf("loadings{ctr=%.2f cvr=%.2f cpm=%.2f} residuals{ctr=%.2f cvr=%.2f cpm=%.2f}",
		m.Loadings.CTR, m.Loadings.CVR, m.Loadings.CPM,
		m.Residuals.CTR, m.Residuals.CVR, m.Residuals.CPM)
}
