package summary

import (
	"math"
	"slices"
)

// Percentile returns the q-th percentile (0-100) of sorted, interpolating
// linearly between the two nearest order statistics at rank q/100*(n-1).
// sorted must be in ascending order and non-empty.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := q / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= n {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Sorted returns an ascending copy of samples
func Sorted(samples []float64) []float64 {
	out := slices.Clone(samples)
	slices.Sort(out)
	return out
}
