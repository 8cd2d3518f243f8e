package sampler

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"budget-brain/core/posterior"
	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

func testPosteriors() Posteriors {
	return Posteriors{
		CPM: posterior.Lognormal(types.Observation{Mean: 8, Dispersion: 0.25}, nil),
		CTR: posterior.Rate(types.Observation{Mean: 0.018, Dispersion: 0.006}, nil),
		CVR: posterior.Rate(types.Observation{Mean: 0.04, Dispersion: 0.015}, nil),
	}
}

func TestSampleIsDeterministic(t *testing.T) {
	a, err := Sample(2000, testPosteriors(), DefaultLatentModel(), 7)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	b, err := Sample(2000, testPosteriors(), DefaultLatentModel(), 7)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if diff := cmp.Diff(a.Rows(), b.Rows()); diff != "" {
		t.Errorf("same seed produced different matrices (-first +second):\n%s", diff)
	}

	c, err := Sample(2000, testPosteriors(), DefaultLatentModel(), 8)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if cmp.Equal(a.Rows(), c.Rows()) {
		t.Error("different seeds produced identical matrices")
	}
}

func TestSamplePrefixIsStable(t *testing.T) {
	short, err := Sample(100, testPosteriors(), DefaultLatentModel(), 42)
	if err != nil {
		t.Fatal(err)
	}
	long, err := Sample(500, testPosteriors(), DefaultLatentModel(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(short.Rows(), long.Rows()[:100]); diff != "" {
		t.Errorf("first 100 draws depend on n:\n%s", diff)
	}
}

func TestSampleScaleCorrectness(t *testing.T) {
	tests := []struct {
		name string
		post Posteriors
	}{
		{"typical", testPosteriors()},
		{"extreme logits", Posteriors{
			CPM: posterior.Params{Location: -900, Scale: 1},
			CTR: posterior.Params{Location: 60, Scale: 1},
			CVR: posterior.Params{Location: -60, Scale: 1},
		}},
		{"huge cost", Posteriors{
			CPM: posterior.Params{Location: 900, Scale: 1},
			CTR: posterior.Params{Location: 0, Scale: 1},
			CVR: posterior.Params{Location: 0, Scale: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Sample(1000, tt.post, DefaultLatentModel(), 3)
			if err != nil {
				t.Fatalf("Sample: %v", err)
			}
			if m.Len() != 1000 {
				t.Fatalf("Len = %d, want 1000", m.Len())
			}
			for i := 0; i < m.Len(); i++ {
				row := m.Row(i)
				cpm, ctr, cvr := row[0], row[1], row[2]
				if !(cpm > 0) || math.IsInf(cpm, 0) {
					t.Fatalf("row %d: cpm = %g, want finite positive", i, cpm)
				}
				if !(ctr > 0 && ctr < 1) {
					t.Fatalf("row %d: ctr = %g, want in (0,1)", i, ctr)
				}
				if !(cvr > 0 && cvr < 1) {
					t.Fatalf("row %d: cvr = %g, want in (0,1)", i, cvr)
				}
			}
		})
	}
}

func TestLatentFactorInducesCorrelation(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m, err := Sample(5000, testPosteriors(), DefaultLatentModel(), seed)
		if err != nil {
			t.Fatal(err)
		}
		r := Correlation(m.Column(types.MetricCTR), m.Column(types.MetricCVR))
		// five standard errors above zero at n=5000
		if r < 5/math.Sqrt(5000) {
			t.Errorf("seed %d: corr(CTR, CVR) = %.3f, want clearly positive", seed, r)
		}
	}
}

func TestZeroLoadingsRemoveCorrelation(t *testing.T) {
	model := DefaultLatentModel().WithLoadings(Loadings{})
	var sum float64
	for seed := int64(1); seed <= 5; seed++ {
		m, err := Sample(5000, testPosteriors(), model, seed)
		if err != nil {
			t.Fatal(err)
		}
		r := Correlation(m.Column(types.MetricCTR), m.Column(types.MetricCVR))
		if math.Abs(r) > 0.06 {
			t.Errorf("seed %d: corr(CTR, CVR) = %.3f, want ~0", seed, r)
		}
		sum += r
	}
	if avg := sum / 5; math.Abs(avg) > 0.03 {
		t.Errorf("mean correlation = %.3f, want ~0", avg)
	}
}

func TestPosteriorResidualMode(t *testing.T) {
	post := testPosteriors()
	// shrink every posterior so the residual noise almost vanishes
	post.CTR.Scale, post.CVR.Scale, post.CPM.Scale = 1e-9, 1e-9, 1e-9

	model := DefaultLatentModel().WithLoadings(Loadings{})
	model.Mode = ResidualPosterior
	m, err := Sample(200, post, model, 11)
	if err != nil {
		t.Fatal(err)
	}
	want := posterior.Sigmoid(post.CTR.Location)
	for i, v := range m.Column(types.MetricCTR) {
		if math.Abs(v-want) > 1e-6 {
			t.Fatalf("draw %d: ctr = %g, want ~%g", i, v, want)
		}
	}
}

func TestSampleRejectsInvalidInput(t *testing.T) {
	nanModel := DefaultLatentModel()
	nanModel.Loadings.CTR = math.NaN()
	negModel := DefaultLatentModel()
	negModel.Residuals.CPM = -1
	badPost := testPosteriors()
	badPost.CVR.Location = math.Inf(1)

	tests := []struct {
		name  string
		n     int
		post  Posteriors
		model LatentModel
	}{
		{"zero samples", 0, testPosteriors(), DefaultLatentModel()},
		{"negative samples", -5, testPosteriors(), DefaultLatentModel()},
		{"nan loading", 10, testPosteriors(), nanModel},
		{"negative residual", 10, testPosteriors(), negModel},
		{"infinite posterior", 10, badPost, DefaultLatentModel()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sample(tt.n, tt.post, tt.model, 1)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsType(err, errors.TypeInput) {
				t.Errorf("error type = %v, want %s", err, errors.TypeInput)
			}
		})
	}
}

func TestCorrelationDegenerate(t *testing.T) {
	if r := Correlation([]float64{1, 1, 1}, []float64{2, 3, 4}); r != 0 {
		t.Errorf("constant column correlation = %g, want 0", r)
	}
	if r := Correlation([]float64{1}, []float64{2}); r != 0 {
		t.Errorf("single-row correlation = %g, want 0", r)
	}
}
