package types

// MetricSummary is the per-metric report handed to downstream consumers.
//
// CertaintyPct and StabilityPct are deliberately separate: the first measures
// how much probability mass sits in a window around the median, the second how
// wide the 10-90 interval is relative to the median.
type MetricSummary struct {
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`

	// CertaintyPct is the window-based certainty in [0, 100]
	CertaintyPct float64 `json:"certainty_pct"`

	// StabilityPct is the CI-width-based certainty in [0, 100]
	StabilityPct float64 `json:"stability_pct"`

	// Mean is the sample mean on natural scale
	Mean float64 `json:"mean"`

	// WindowMean is the mean of the central window of sorted samples
	WindowMean float64 `json:"window_mean"`
}

// PosteriorParams records the transformed-space Normal used for a metric
type PosteriorParams struct {
	Location float64 `json:"location"`
	Scale    float64 `json:"scale"`
}

// Diagnostics carries sample-level checks that are not part of the summary contract
type Diagnostics struct {
	// CTRCVRCorrelation is the empirical Pearson correlation of the CTR and CVR columns
	CTRCVRCorrelation float64 `json:"ctr_cvr_correlation"`

	// SampleCount is the number of joint draws
	SampleCount int `json:"sample_count"`
}

// ChannelResult is the full estimation output for one channel
type ChannelResult struct {
	Channel     string                     `json:"channel"`
	Seed        int64                      `json:"seed"`
	Metrics     map[Metric]MetricSummary   `json:"metrics"`
	Posteriors  map[Metric]PosteriorParams `json:"posteriors"`
	Diagnostics Diagnostics                `json:"diagnostics"`
}

// Summary returns the summary for one metric
func (r *ChannelResult) Summary(m Metric) MetricSummary {
	return r.Metrics[m]
}
