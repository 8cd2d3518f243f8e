// Package output renders estimation results for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"budget-brain/core/allocation"
	"budget-brain/core/explanation"
	"budget-brain/core/sampler"
	"budget-brain/core/types"
	"budget-brain/core/ui"
	"budget-brain/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *EstimationResult) error
}

// EstimationResult contains the complete estimation output
type EstimationResult struct {
	// Channels are the per-channel results in channel name order
	Channels []*types.ChannelResult `json:"channels"`

	// Allocation is present when a budget split was requested
	Allocation *allocation.Allocation `json:"allocation,omitempty"`

	// Explanations justify each share, largest first
	Explanations []*explanation.ChannelExplanation `json:"explanations,omitempty"`

	// Metadata contains execution context
	Metadata EstimationMetadata `json:"metadata"`
}

// EstimationMetadata contains execution context
type EstimationMetadata struct {
	// Timestamp is when the estimation was performed
	Timestamp string `json:"timestamp"`

	// Duration is how long the estimation took
	Duration string `json:"duration"`

	// Version is the tool version
	Version string `json:"version"`

	// Seed is the run seed
	Seed int64 `json:"seed"`

	// SampleCount is the number of joint draws per channel
	SampleCount int `json:"sample_count"`

	// Model is the latent correlation model used
	Model sampler.LatentModel `json:"model"`
}

// ForFormat returns the formatter for a format name
func ForFormat(f Format, noColor bool) (Formatter, error) {
	switch f {
	case FormatCLI, "":
		return &CLIFormatter{NoColor: noColor}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	}
	return nil, errors.NotSupported(fmt.Sprintf("output format %q", string(f)))
}

// JSONFormatter renders the result as JSON
type JSONFormatter struct {
	Indent bool
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes the result as JSON
func (f *JSONFormatter) Render(w io.Writer, result *EstimationResult) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

// CLIFormatter renders tables per channel
type CLIFormatter struct {
	NoColor bool
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render writes one table per channel and the allocation, if any
func (f *CLIFormatter) Render(w io.Writer, result *EstimationResult) error {
	uw := ui.NewWriter(w, f.NoColor)

	for _, ch := range result.Channels {
		uw.Header(ch.Channel)
		tbl := uw.NewTable("Metric", "P10", "P50", "P90", "Certainty", "Stability")
		for _, m := range types.Metrics() {
			s := ch.Summary(m)
			tbl.AddRow(
				string(m),
				formatValue(m, s.P10),
				formatValue(m, s.P50),
				formatValue(m, s.P90),
				uw.Certainty(s.CertaintyPct),
				uw.Certainty(s.StabilityPct),
			)
		}
		tbl.Render()
		uw.Println("")
		uw.Println("  seed %d · %d draws · corr(CTR, CVR) %.2f",
			ch.Seed, ch.Diagnostics.SampleCount, ch.Diagnostics.CTRCVRCorrelation)
	}

	if result.Allocation != nil {
		uw.Header("Budget Allocation")
		tbl := uw.NewTable("Channel", "Share", "Cost/Click", "Cost/Conversion", "Avg Certainty", "Budget")
		for _, s := range result.Allocation.Ranked() {
			budget := "-"
			if s.Budget != nil {
				budget = s.Budget.String()
			}
			tbl.AddRow(
				s.Channel,
				s.Percent.StringFixed(1)+"%",
				s.CostPerClick.String(),
				s.CostPerConversion.String(),
				fmt.Sprintf("%.1f%%", s.AvgCertainty),
				budget,
			)
		}
		tbl.Render()
		uw.Println("")
		uw.Println("%s", allocation.Format(result.Allocation))
		if result.Allocation.EvenSplit {
			uw.Warning("every channel scored zero, so the budget is split evenly")
		}
	}

	if len(result.Explanations) > 0 {
		uw.Header("Why This Split")
		uw.Println("%s", result.Explanations[0].Formula)
		for _, e := range result.Explanations {
			uw.Println("")
			uw.SubHeader(fmt.Sprintf("%d. %s: %s", e.Rank, e.Channel, e.Share))
			uw.Println("  %s", e.Narrative())
		}
	}

	if result.Metadata.Duration != "" {
		uw.Println("")
		uw.Println("Completed in %s", result.Metadata.Duration)
	}
	return nil
}

func formatValue(m types.Metric, v float64) string {
	if m.IsRate() {
		return fmt.Sprintf("%.3f%%", v*100)
	}
	return fmt.Sprintf("%.2f", v)
}
