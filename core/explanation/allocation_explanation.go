// Package explanation - Allocation explanations
// Exposes WHY a channel received its share, not just the percentage.
package explanation

import (
	"fmt"
	"math"
	"strings"

	"budget-brain/core/allocation"
	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// Input sources
const (
	SourceSimulated  = "simulated median"
	SourceCalculated = "calculated"
)

// Input represents an input to the composite score
type Input struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// ChannelExplanation justifies one channel's budget share
type ChannelExplanation struct {
	// Identity
	Rank    int    `json:"rank"`
	Channel string `json:"channel"`
	Share   string `json:"share"`

	// Formula breakdown
	Formula string  `json:"formula"`
	Inputs  []Input `json:"inputs"`

	// Certainty
	CertaintySource allocation.CertaintySource `json:"certainty_source"`
	Certainty       float64                    `json:"certainty"`
	CertaintyReason string                     `json:"certainty_reason"`

	// Reasons are plain-language statements, most important first
	Reasons []string `json:"reasons"`
}

// Formula renders the composite score formula for cfg
func Formula(cfg allocation.Config) string {
	return fmt.Sprintf("score = %.2f × (CTR × CVR / cost per conversion) × %g + %.2f × average %s",
		cfg.EfficiencyWeight, cfg.EfficiencyScale, cfg.CertaintyWeight, cfg.CertaintySource)
}

// Explain builds one explanation per share, ordered from the largest share
// to the smallest. results supplies the medians behind each share.
func Explain(al *allocation.Allocation, results []*types.ChannelResult, cfg allocation.Config) ([]*ChannelExplanation, error) {
	if al == nil || len(al.Shares) == 0 {
		return nil, errors.Input("no allocation to explain")
	}
	byChannel := make(map[string]*types.ChannelResult, len(results))
	for _, r := range results {
		byChannel[r.Channel] = r
	}

	field := newFieldStats(al.Shares)
	formula := Formula(cfg)

	ranked := al.Ranked()
	out := make([]*ChannelExplanation, 0, len(ranked))
	for i, s := range ranked {
		r, ok := byChannel[s.Channel]
		if !ok {
			return nil, errors.Inputf("no estimation result for channel %q", s.Channel)
		}
		cpm := r.Summary(types.MetricCPM)
		ctr := r.Summary(types.MetricCTR)
		cvr := r.Summary(types.MetricCVR)

		e := &ChannelExplanation{
			Rank:            i + 1,
			Channel:         s.Channel,
			Share:           s.Percent.StringFixed(1) + "%",
			Formula:         formula,
			CertaintySource: cfg.CertaintySource,
			Certainty:       s.AvgCertainty,
			CertaintyReason: certaintyReason(s.AvgCertainty, field.meanCertainty),
		}
		e.addInput("CPM", fmt.Sprintf("%.2f %s", cpm.P50, cfg.Currency), SourceSimulated).
			addInput("CTR", percent(ctr.P50), SourceSimulated).
			addInput("CVR", percent(cvr.P50), SourceSimulated).
			addInput("cost per click", s.CostPerClick.String(), SourceCalculated).
			addInput("cost per conversion", s.CostPerConversion.String(), SourceCalculated).
			addInput("overall conversion", percent(s.OverallConversionRate), SourceCalculated).
			addInput("average "+string(cfg.CertaintySource), fmt.Sprintf("%.1f%%", s.AvgCertainty), string(cfg.CertaintySource)).
			addInput("score", fmt.Sprintf("%.2f", s.CompositeScore), SourceCalculated)

		e.Reasons = reasons(s, ctr, cvr, field, len(ranked))
		out = append(out, e)
	}
	return out, nil
}

func (e *ChannelExplanation) addInput(name, value, source string) *ChannelExplanation {
	e.Inputs = append(e.Inputs, Input{Name: name, Value: value, Source: source})
	return e
}

// Narrative returns the plain-language justification
func (e *ChannelExplanation) Narrative() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("I gave %s of the budget to %s.", e.Share, e.Channel))
	for _, r := range e.Reasons {
		sb.WriteString(" ")
		sb.WriteString(r)
	}
	return sb.String()
}

// fieldStats summarises all shares so each channel can be compared to the rest
type fieldStats struct {
	cheapestCPCV  string
	priciestCPCV  string
	meanCertainty float64
}

func newFieldStats(shares []allocation.Share) fieldStats {
	f := fieldStats{}
	var cheapest, priciest allocation.Share
	for i, s := range shares {
		if i == 0 || s.CostPerConversion.Cmp(cheapest.CostPerConversion) < 0 {
			cheapest = s
		}
		if i == 0 || s.CostPerConversion.Cmp(priciest.CostPerConversion) > 0 {
			priciest = s
		}
		f.meanCertainty += s.AvgCertainty
	}
	f.cheapestCPCV = cheapest.Channel
	f.priciestCPCV = priciest.Channel
	f.meanCertainty /= float64(len(shares))
	return f
}

func reasons(s allocation.Share, ctr, cvr types.MetricSummary, f fieldStats, n int) []string {
	out := make([]string, 0, 4)

	cost := fmt.Sprintf("Each conversion costs about %s", s.CostPerConversion.Round(2))
	switch {
	case n > 1 && s.Channel == f.cheapestCPCV:
		cost += fmt.Sprintf(", the lowest of the %d channels.", n)
	case n > 1 && s.Channel == f.priciestCPCV:
		cost += fmt.Sprintf(", the highest of the %d channels.", n)
	default:
		cost += "."
	}
	out = append(out, cost)

	out = append(out, fmt.Sprintf("About %s of people who see an ad click it, and %s of those clicks turn into a sale.",
		percent(ctr.P50), percent(cvr.P50)))
	out = append(out, fmt.Sprintf("Each click costs about %s.", s.CostPerClick.Round(2)))
	out = append(out, certaintyReason(s.AvgCertainty, f.meanCertainty))
	return out
}

func certaintyReason(c, mean float64) string {
	switch {
	case math.Abs(c-mean) < 1:
		return fmt.Sprintf("How sure we are about its numbers (%.1f%%) is about average.", c)
	case c > mean:
		return fmt.Sprintf("We are more sure about its numbers than average (%.1f%% vs %.1f%%).", c, mean)
	default:
		return fmt.Sprintf("We are less sure about its numbers than average (%.1f%% vs %.1f%%).", c, mean)
	}
}

func percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}
