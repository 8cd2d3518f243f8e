package types

// MaxCPMMean bounds the observed CPM so the log-space posterior and the
// latent shift stay well inside float64 range once exponentiated
const MaxCPMMean = 1e9

// ChannelInput carries the six aggregate scalars for one advertising channel
type ChannelInput struct {
	// Channel is the platform name (Google, Meta, ...)
	Channel string `json:"channel" yaml:"channel" validate:"required"`

	// CPMMean is the observed mean CPM in currency units, at most MaxCPMMean
	CPMMean float64 `json:"cpm_mean" yaml:"cpm_mean" validate:"gte=0,lte=1e9"`

	// CPMCV is the coefficient of variation of CPM
	CPMCV float64 `json:"cpm_cv" yaml:"cpm_cv" validate:"gte=0"`

	// CTRMean is the observed mean click-through rate
	CTRMean float64 `json:"ctr_mean" yaml:"ctr_mean" validate:"gte=0,lte=1"`

	// CTRStd is the observed standard deviation of click-through rate
	CTRStd float64 `json:"ctr_std" yaml:"ctr_std" validate:"gte=0"`

	// CVRMean is the observed mean conversion rate
	CVRMean float64 `json:"cvr_mean" yaml:"cvr_mean" validate:"gte=0,lte=1"`

	// CVRStd is the observed standard deviation of conversion rate
	CVRStd float64 `json:"cvr_std" yaml:"cvr_std" validate:"gte=0"`
}

// Observation returns the observation for one metric
func (c ChannelInput) Observation(m Metric) Observation {
	switch m {
	case MetricCPM:
		return Observation{Mean: c.CPMMean, Dispersion: c.CPMCV}
	case MetricCTR:
		return Observation{Mean: c.CTRMean, Dispersion: c.CTRStd}
	default:
		return Observation{Mean: c.CVRMean, Dispersion: c.CVRStd}
	}
}

// Scalars returns the six numeric inputs keyed by their wire names
func (c ChannelInput) Scalars() map[string]float64 {
	return map[string]float64{
		"cpm_mean": c.CPMMean,
		"cpm_cv":   c.CPMCV,
		"ctr_mean": c.CTRMean,
		"ctr_std":  c.CTRStd,
		"cvr_mean": c.CVRMean,
		"cvr_std":  c.CVRStd,
	}
}
