// Package summary reduces one metric's Monte Carlo samples to percentiles and
// two independent certainty scores.
package summary

import (
	"math"

	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// medianFloor keeps relative measures finite when the median is ~0
const medianFloor = 1e-8

// Options tune the certainty scores
type Options struct {
	// WindowFrac is the half-width of the window around the median, as a
	// fraction of the median's magnitude
	WindowFrac float64 `json:"window_frac"`

	// TargetWidth is the relative 10-90 width that maps to 50% stability
	TargetWidth float64 `json:"target_width"`
}

// DefaultOptions returns window 0.15 and target width 0.6
func DefaultOptions() Options {
	return Options{
		WindowFrac:  0.15,
		TargetWidth: 0.6,
	}
}

// Validate checks the option ranges
func (o Options) Validate() error {
	if !(o.WindowFrac > 0 && o.WindowFrac <= 1) {
		return errors.Inputf("window fraction must be in (0, 1], got %v", o.WindowFrac)
	}
	if !(o.TargetWidth > 0) || math.IsInf(o.TargetWidth, 0) {
		return errors.Inputf("target width must be positive and finite, got %v", o.TargetWidth)
	}
	return nil
}

// Summarize computes the metric summary. samples is not modified.
func Summarize(samples []float64, opts Options) (types.MetricSummary, error) {
	if len(samples) == 0 {
		return types.MetricSummary{}, errors.Input("cannot summarize an empty sample set")
	}
	if err := opts.Validate(); err != nil {
		return types.MetricSummary{}, err
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.MetricSummary{}, errors.Numeric("sample is not finite").
				WithContext("index", i).
				WithContext("value", v)
		}
	}

	sorted := Sorted(samples)
	p10 := Percentile(sorted, 10)
	p50 := Percentile(sorted, 50)
	p90 := Percentile(sorted, 90)

	s := types.MetricSummary{
		P10:          p10,
		P50:          p50,
		P90:          p90,
		CertaintyPct: WindowCertainty(sorted, p50, opts.WindowFrac),
		StabilityPct: IntervalStability(p10, p50, p90, opts.TargetWidth),
		Mean:         mean(sorted),
		WindowMean:   windowMean(sorted, opts.WindowFrac),
	}
	if err := checkFinite(s); err != nil {
		return types.MetricSummary{}, err
	}
	return s, nil
}

// checkFinite rejects a summary with any NaN or infinite field
func checkFinite(s types.MetricSummary) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"p10", s.P10},
		{"p50", s.P50},
		{"p90", s.P90},
		{"certainty_pct", s.CertaintyPct},
		{"stability_pct", s.StabilityPct},
		{"mean", s.Mean},
		{"window_mean", s.WindowMean},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.Numeric("summary "+f.name+" is not finite").WithContext("value", f.value)
		}
	}
	return nil
}

// WindowCertainty is the percentage of samples within windowFrac*|median| of the median
func WindowCertainty(samples []float64, median, windowFrac float64) float64 {
	half := windowFrac * (math.Abs(median) + medianFloor)
	within := 0
	for _, v := range samples {
		if math.Abs(v-median) <= half {
			within++
		}
	}
	return 100 * float64(within) / float64(len(samples))
}

// IntervalStability maps the relative 10-90 width w to 100*(1 - w/target),
// clamped to [0, 100]
func IntervalStability(p10, p50, p90, targetWidth float64) float64 {
	w := (p90 - p10) / (math.Abs(p50) + medianFloor)
	score := 100 * (1 - w/targetWidth)
	return math.Max(0, math.Min(100, score))
}

// mean is a running mean, which stays finite for values near MaxFloat64
func mean(xs []float64) float64 {
	var m float64
	for i, v := range xs {
		m += (v - m) / float64(i+1)
	}
	return m
}

// windowMean averages the central windowFrac share of the sorted samples
func windowMean(sorted []float64, windowFrac float64) float64 {
	n := len(sorted)
	size := max(1, int(math.Floor(float64(n)*windowFrac)))
	start := (n - size) / 2
	return mean(sorted[start : start+size])
}
