// Package types defines the core domain types shared by the estimation pipeline.
package types

import "fmt"

// Metric identifies one of the three advertising performance quantities
type Metric string

const (
	// MetricCPM is cost per thousand impressions (positive, currency units)
	MetricCPM Metric = "CPM"

	// MetricCTR is click-through rate (probability)
	MetricCTR Metric = "CTR"

	// MetricCVR is conversion rate (probability)
	MetricCVR Metric = "CVR"
)

// Metrics returns all metrics in sample-matrix column order
func Metrics() []Metric {
	return []Metric{MetricCPM, MetricCTR, MetricCVR}
}

// Column returns the sample-matrix column index for the metric
func (m Metric) Column() int {
	switch m {
	case MetricCPM:
		return 0
	case MetricCTR:
		return 1
	case MetricCVR:
		return 2
	}
	panic(fmt.Sprintf("unknown metric %q", string(m)))
}

// IsRate reports whether the metric is probability-valued
func (m Metric) IsRate() bool {
	return m == MetricCTR || m == MetricCVR
}

// Observation summarises one metric for one channel.
// Dispersion is the standard deviation for rate metrics and the
// coefficient of variation for the cost metric.
type Observation struct {
	Mean       float64 `json:"mean"`
	Dispersion float64 `json:"dispersion"`
}
