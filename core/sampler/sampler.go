// Package sampler draws joint Monte Carlo samples of CPM, CTR and CVR whose
// correlation comes from one shared latent quality factor.
package sampler

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"budget-brain/core/posterior"
	"budget-brain/internal/errors"
)

const (
	// rateMargin keeps sampled rates strictly inside (0, 1) once the
	// sigmoid saturates in float64
	rateMargin = 1e-12

	// costFloor keeps sampled CPM strictly positive when exp underflows
	costFloor = 1e-12

	// streamID is the fixed PCG stream; the caller's seed selects the state
	streamID = 0x9e3779b97f4a7c15
)

// Posteriors groups the three transformed-space posteriors for one channel
type Posteriors struct {
	CPM posterior.Params
	CTR posterior.Params
	CVR posterior.Params
}

// Validate rejects non-finite or negative-scale posteriors
func (p Posteriors) Validate() error {
	named := []struct {
		name   string
		params posterior.Params
	}{{"CPM", p.CPM}, {"CTR", p.CTR}, {"CVR", p.CVR}}
	for _, n := range named {
		if !n.params.Finite() {
			return errors.Inputf("%s posterior is not finite: %+v", n.name, n.params)
		}
		if n.params.Scale < 0 {
			return errors.Inputf("%s posterior scale is negative: %v", n.name, n.params.Scale)
		}
	}
	return nil
}

// NewSource returns the deterministic random source for a seed
func NewSource(seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), streamID)
}

// Sample draws n joint samples. For every draw the stream is consumed in the
// fixed order q, z_ctr, z_cvr, z_cpm, so a given seed always reproduces the
// same matrix bit for bit.
func Sample(n int, post Posteriors, model LatentModel, seed int64) (*Matrix, error) {
	if n <= 0 {
		return nil, errors.Inputf("sample count must be positive, got %d", n)
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	resid := model.Residuals
	if model.Mode == ResidualPosterior {
		resid = ResidualScales{
			CTR: post.CTR.Scale,
			CVR: post.CVR.Scale,
			CPM: post.CPM.Scale,
		}
	}

	src := NewSource(seed)
	quality := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	zCTR := distuv.Normal{Mu: 0, Sigma: resid.CTR, Src: src}
	zCVR := distuv.Normal{Mu: 0, Sigma: resid.CVR, Src: src}
	zCPM := distuv.Normal{Mu: 0, Sigma: resid.CPM, Src: src}

	out := newMatrix(n)
	cpm, ctr, cvr := out.cols[0], out.cols[1], out.cols[2]
	load := model.Loadings

	for i := 0; i < n; i++ {
		q := quality.Rand()

		logitCTR := post.CTR.Location + load.CTR*q + zCTR.Rand()
		ctr[i] = rateFromLogit(logitCTR)

		logitCVR := post.CVR.Location + load.CVR*q + zCVR.Rand()
		cvr[i] = rateFromLogit(logitCVR)

		lnCPM := post.CPM.Location + load.CPM*q + zCPM.Rand()
		cpm[i] = costFromLog(lnCPM)
	}
	return out, nil
}

func rateFromLogit(z float64) float64 {
	return posterior.Clamp(posterior.Sigmoid(z), rateMargin, 1-rateMargin)
}

func costFromLog(z float64) float64 {
	return posterior.Clamp(math.Exp(z), costFloor, math.MaxFloat64)
}

// Correlation is the Pearson correlation of two equal-length columns.
// Degenerate (constant) columns report 0.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
