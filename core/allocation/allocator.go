// Package allocation turns per-channel metric summaries into budget shares.
//
// Each channel is scored as
//
//	composite = efficiencyWeight * (CTR*CVR / costPerConversion) * efficiencyScale
//	          + certaintyWeight  * mean(certainty of CPM, CTR, CVR)
//
// where costPerConversion = CPM / (CTR * 1000) / CVR, all taken at the p50.
// Shares are composite / sum(composite), as percentages rounded to one decimal.
package allocation

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"budget-brain/core/determinism"
	"budget-brain/core/types"
	"budget-brain/internal/errors"
	"budget-brain/internal/logging"
)

// CertaintySource selects which certainty score feeds the composite
type CertaintySource string

const (
	// CertaintyWindow uses the window-based CertaintyPct
	CertaintyWindow CertaintySource = "certainty"

	// CertaintyStability uses the CI-width-based StabilityPct
	CertaintyStability CertaintySource = "stability"
)

var impressionsPerMille = decimal.NewFromInt(1000)

// Config holds the scoring weights
type Config struct {
	EfficiencyWeight float64         `json:"efficiency_weight"`
	CertaintyWeight  float64         `json:"certainty_weight"`
	EfficiencyScale  float64         `json:"efficiency_scale"`
	CertaintySource  CertaintySource `json:"certainty_source"`
	Currency         string          `json:"currency"`
}

// DefaultConfig returns 70% efficiency, 30% window certainty
func DefaultConfig() Config {
	return Config{
		EfficiencyWeight: 0.7,
		CertaintyWeight:  0.3,
		EfficiencyScale:  1_000_000,
		CertaintySource:  CertaintyWindow,
		Currency:         "USD",
	}
}

// Validate checks weights and source
func (c Config) Validate() error {
	if c.EfficiencyWeight < 0 || c.CertaintyWeight < 0 || c.EfficiencyScale < 0 {
		return errors.Config("allocation weights must be non-negative")
	}
	if c.EfficiencyWeight+c.CertaintyWeight == 0 {
		return errors.Config("allocation weights cannot both be zero")
	}
	switch c.CertaintySource {
	case CertaintyWindow, CertaintyStability:
	default:
		return errors.Newf(errors.TypeConfig, "unknown certainty source %q", string(c.CertaintySource))
	}
	if c.Currency == "" {
		return errors.Config("allocation currency is required")
	}
	return nil
}

// Share is one channel's slice of the budget
type Share struct {
	Channel               string             `json:"channel"`
	Percent               decimal.Decimal    `json:"percent"`
	CompositeScore        float64            `json:"composite_score"`
	CostPerClick          determinism.Money  `json:"cost_per_click"`
	CostPerConversion     determinism.Money  `json:"cost_per_conversion"`
	OverallConversionRate float64            `json:"overall_conversion_rate"`
	AvgCertainty          float64            `json:"avg_certainty"`
	Budget                *determinism.Money `json:"budget,omitempty"`
}

// Allocation is the allocator output. Shares keep the order of the results
// passed to Allocate; Ranked sorts them by share.
type Allocation struct {
	Shares []Share `json:"shares"`

	// EvenSplit is set when every composite score was zero
	EvenSplit bool `json:"even_split,omitempty"`
}

// Allocator scores channels with a fixed Config
type Allocator struct {
	cfg Config
}

// New returns an Allocator after validating cfg
func New(cfg Config) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Allocator{cfg: cfg}, nil
}

// Config returns the scoring configuration
func (a *Allocator) Config() Config {
	return a.cfg
}

// Allocate scores every channel and normalises the composite scores into
// percentages. If every composite is zero the budget is split evenly.
func (a *Allocator) Allocate(results []*types.ChannelResult) (*Allocation, error) {
	if len(results) == 0 {
		return nil, errors.Input("no channel results to allocate")
	}

	shares := make([]Share, 0, len(results))
	var total float64
	for _, r := range results {
		s, err := a.score(r)
		if err != nil {
			return nil, err
		}
		total += s.CompositeScore
		shares = append(shares, s)
	}

	evenSplit := !(total > 0)
	if evenSplit {
		logging.Warn("all composite scores are zero, splitting evenly", zap.Int("channels", len(shares)))
	}

	hundred := decimal.NewFromInt(100)
	for i := range shares {
		var pct float64
		if total > 0 {
			pct = shares[i].CompositeScore / total * 100
		} else {
			pct = 100 / float64(len(shares))
		}
		shares[i].Percent = decimal.NewFromFloat(pct).Round(1)
		if shares[i].Percent.GreaterThan(hundred) {
			shares[i].Percent = hundred
		}
	}
	return &Allocation{Shares: shares, EvenSplit: evenSplit}, nil
}

func (a *Allocator) score(r *types.ChannelResult) (Share, error) {
	if r == nil {
		return Share{}, errors.Input("nil channel result")
	}
	cpm := r.Summary(types.MetricCPM)
	ctr := r.Summary(types.MetricCTR)
	cvr := r.Summary(types.MetricCVR)

	if !(ctr.P50 > 0) || !(cvr.P50 > 0) || !(cpm.P50 > 0) {
		return Share{}, errors.Inputf("channel %q needs positive CPM, CTR and CVR medians", r.Channel)
	}

	ctrDec := decimal.NewFromFloat(ctr.P50)
	cvrDec := decimal.NewFromFloat(cvr.P50)
	cpc := determinism.NewMoneyFromFloat(cpm.P50, a.cfg.Currency).Div(ctrDec.Mul(impressionsPerMille))
	cpcv := cpc.Div(cvrDec)

	overall := ctr.P50 * cvr.P50
	efficiency := overall / cpcv.Float64()
	avgCertainty := (a.certainty(cpm) + a.certainty(ctr) + a.certainty(cvr)) / 3
	composite := a.cfg.EfficiencyWeight*efficiency*a.cfg.EfficiencyScale + a.cfg.CertaintyWeight*avgCertainty

	if math.IsNaN(composite) || math.IsInf(composite, 0) {
		return Share{}, errors.Numeric(fmt.Sprintf("composite score for %q is not finite", r.Channel))
	}

	return Share{
		Channel:               r.Channel,
		CompositeScore:        composite,
		CostPerClick:          cpc,
		CostPerConversion:     cpcv,
		OverallConversionRate: overall,
		AvgCertainty:          avgCertainty,
	}, nil
}

func (a *Allocator) certainty(s types.MetricSummary) float64 {
	if a.cfg.CertaintySource == CertaintyStability {
		return s.StabilityPct
	}
	return s.CertaintyPct
}

// SplitBudget assigns money to each share. Amounts are rounded to cents and
// the rounding remainder goes to the largest share, so they sum to total.
func (al *Allocation) SplitBudget(total determinism.Money) {
	if len(al.Shares) == 0 {
		return
	}
	var sum decimal.Decimal
	for _, s := range al.Shares {
		sum = sum.Add(s.Percent)
	}

	assigned := determinism.Zero(total.Currency())
	largest := 0
	for i := range al.Shares {
		var frac decimal.Decimal
		if sum.IsPositive() {
			frac = al.Shares[i].Percent.Div(sum)
		}
		amount := total.Mul(frac).Round(2)
		al.Shares[i].Budget = &amount
		assigned = assigned.Add(amount)
		if al.Shares[i].Percent.GreaterThan(al.Shares[largest].Percent) {
			largest = i
		}
	}
	remainder := total.Sub(assigned)
	adjusted := al.Shares[largest].Budget.Add(remainder)
	al.Shares[largest].Budget = &adjusted
}

// Ranked returns the shares sorted by percentage, highest first, ties by name
func (al *Allocation) Ranked() []Share {
	ranked := slices.Clone(al.Shares)
	slices.SortStableFunc(ranked, func(a, b Share) int {
		if c := b.Percent.Cmp(a.Percent); c != 0 {
			return c
		}
		return cmp.Compare(a.Channel, b.Channel)
	})
	return ranked
}

// Format renders "Google: 40.1% Meta: 30.0%" in ranked order
func Format(al *Allocation) string {
	parts := make([]string, 0, len(al.Shares))
	for _, s := range al.Ranked() {
		parts = append(parts, fmt.Sprintf("%s: %s%%", s.Channel, s.Percent.StringFixed(1)))
	}
	return strings.Join(parts, " ")
}
