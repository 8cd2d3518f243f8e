package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"budget-brain/core/allocation"
	"budget-brain/core/determinism"
	"budget-brain/core/explanation"
	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

func sampleResult() *EstimationResult {
	return &EstimationResult{
		Channels: []*types.ChannelResult{{
			Channel: "Google",
			Seed:    7,
			Metrics: map[types.Metric]types.MetricSummary{
				types.MetricCPM: {P10: 5.66, P50: 7.75, P90: 10.63, CertaintyPct: 45.5},
				types.MetricCTR: {P10: 0.0098, P50: 0.0178, P90: 0.0323, CertaintyPct: 24.7},
				types.MetricCVR: {P10: 0.0246, P50: 0.0397, P90: 0.0642, CertaintyPct: 31.2},
			},
			Diagnostics: types.Diagnostics{SampleCount: 5000, CTRCVRCorrelation: 0.61},
		}},
		Allocation: &allocation.Allocation{Shares: []allocation.Share{{
			Channel:           "Google",
			Percent:           decimal.NewFromInt(100),
			CostPerClick:      determinism.NewMoneyFromFloat(0.4354, "USD"),
			CostPerConversion: determinism.NewMoneyFromFloat(10.97, "USD"),
			AvgCertainty:      33.8,
		}}},
		Explanations: []*explanation.ChannelExplanation{{
			Rank:    1,
			Channel: "Google",
			Share:   "100.0%",
			Formula: "score = 0.70 × (CTR × CVR / cost per conversion) × 1e+06 + 0.30 × average certainty",
			Reasons: []string{"Each conversion costs about 10.97 USD."},
		}},
		Metadata: EstimationMetadata{Seed: 7, SampleCount: 5000, Duration: "12ms"},
	}
}

func TestCLIFormatter(t *testing.T) {
	f, err := ForFormat(FormatCLI, true)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Google", "7.75", "1.780%", "45.5%", "Budget Allocation", "0.44 USD", "Google: 100.0%", "Why This Split", "1. Google: 100.0%",
		"I gave 100.0% of the budget to Google. Each conversion costs about 10.97 USD.", "Completed in 12ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONFormatterUsesWireKeys(t *testing.T) {
	f, err := ForFormat(FormatJSON, false)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Channels []struct {
			Metrics map[string]map[string]float64 `json:"metrics"`
		} `json:"channels"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	cpm := decoded.Channels[0].Metrics["CPM"]
	for _, key := range []string{"p10", "p50", "p90", "certainty_pct", "stability_pct"} {
		if _, ok := cpm[key]; !ok {
			t.Errorf("CPM summary missing %q: %v", key, cpm)
		}
	}
}

func TestCLIFormatterWarnsOnEvenSplit(t *testing.T) {
	res := sampleResult()
	res.Allocation.EvenSplit = true

	var buf bytes.Buffer
	if err := (&CLIFormatter{NoColor: true}).Render(&buf, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "split evenly") {
		t.Errorf("output missing even split warning:\n%s", buf.String())
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := ForFormat("html", false); !errors.IsType(err, errors.TypeNotSupported) {
		t.Errorf("error = %v, want not supported", err)
	}
}
