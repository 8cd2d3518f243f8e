package posterior

import "math"

const (
	// ProbabilityEpsilon is the margin kept from 0 and 1 before a logit transform
	ProbabilityEpsilon = 1e-6

	// PositiveFloor is the smallest cost value admitted to a log transform
	PositiveFloor = 1e-6

	// MinRateStd floors the observed rate standard deviation
	MinRateStd = 1e-8

	// MinCV floors the observed coefficient of variation
	MinCV = 1e-6
)

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// ClampProbability moves p into [ProbabilityEpsilon, 1-ProbabilityEpsilon]
func ClampProbability(p float64) float64 {
	return Clamp(p, ProbabilityEpsilon, 1-ProbabilityEpsilon)
}

// Logit maps a probability to the real line, clamping at the boundary
func Logit(p float64) float64 {
	p = ClampProbability(p)
	return math.Log(p / (1 - p))
}

// Sigmoid is the inverse of Logit. The two branches avoid overflow in exp.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// SafeLog is ln(max(x, PositiveFloor))
func SafeLog(x float64) float64 {
	return math.Log(math.Max(x, PositiveFloor))
}
