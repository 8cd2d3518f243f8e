// Package cmd - estimate command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"budget-brain/adapters/input"
	"budget-brain/core/estimate"
	"budget-brain/core/output"
	"budget-brain/core/sampler"
	"budget-brain/core/types"
	"budget-brain/internal/config"
	"budget-brain/internal/errors"
	"budget-brain/internal/logging"
)

// estimateFlags are shared by estimate and allocate
type estimateFlags struct {
	format       string
	noColor      bool
	samples      int
	seed         int64
	window       float64
	residualMode string
	workers      int
	single       types.ChannelInput
}

var estFlags estimateFlags

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate [file]",
	Short: "Estimate metric distributions for one or more channels",
	Long: `Estimate posterior percentiles and certainty for CPM, CTR and CVR.

Channels are read from a JSON, YAML or HCL file, or given as flags for a
single channel.

Examples:
  budget-brain estimate platforms.json
  budget-brain estimate --format json --seed 7 platforms.hcl
  budget-brain estimate --channel Google --cpm-mean 8 --cpm-cv 0.3 \
      --ctr-mean 0.018 --ctr-std 0.006 --cvr-mean 0.04 --cvr-std 0.012`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEstimate,
}

func init() {
	addSimulationFlags(estimateCmd, &estFlags)

	f := estimateCmd.Flags()
	f.StringVar(&estFlags.single.Channel, "channel", "", "channel name for a single flag-defined channel")
	f.Float64Var(&estFlags.single.CPMMean, "cpm-mean", 0, "observed CPM mean")
	f.Float64Var(&estFlags.single.CPMCV, "cpm-cv", 0, "observed CPM coefficient of variation")
	f.Float64Var(&estFlags.single.CTRMean, "ctr-mean", 0, "observed CTR mean (fraction)")
	f.Float64Var(&estFlags.single.CTRStd, "ctr-std", 0, "observed CTR standard deviation")
	f.Float64Var(&estFlags.single.CVRMean, "cvr-mean", 0, "observed CVR mean (fraction)")
	f.Float64Var(&estFlags.single.CVRStd, "cvr-std", 0, "observed CVR standard deviation")
}

func addSimulationFlags(c *cobra.Command, fl *estimateFlags) {
	f := c.Flags()
	f.StringVarP(&fl.format, "format", "f", "", "output format (cli, json)")
	f.BoolVar(&fl.noColor, "no-color", false, "disable colored output")
	f.IntVarP(&fl.samples, "samples", "n", 0, "Monte Carlo draws per channel")
	f.Int64Var(&fl.seed, "seed", 0, "run seed")
	f.Float64Var(&fl.window, "window", 0, "certainty window as a fraction of the median")
	f.StringVar(&fl.residualMode, "residual-mode", "", "residual scales: fixed or posterior")
	f.IntVar(&fl.workers, "workers", 0, "channels estimated concurrently")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	inputs, err := loadChannels(args, estFlags.single)
	if err != nil {
		return err
	}
	result, err := estimateChannels(cmd, &estFlags, inputs)
	if err != nil {
		return err
	}
	return render(cmd, &estFlags, result)
}

func loadChannels(args []string, single types.ChannelInput) ([]types.ChannelInput, error) {
	if len(args) > 0 {
		if single.Channel != "" {
			return nil, errors.Input("give either an input file or --channel flags, not both")
		}
		inputs, err := input.LoadFile(args[0])
		if err != nil {
			return nil, err
		}
		logging.Info("loaded channels", zap.String("file", args[0]), zap.Int("count", len(inputs)))
		return inputs, nil
	}
	if single.Channel == "" {
		return nil, errors.Input("no channels: pass an input file or --channel with metric flags")
	}
	return []types.ChannelInput{single}, nil
}

func engineOptions(cmd *cobra.Command, fl *estimateFlags) estimate.Options {
	opts := config.Get().EngineOptions()
	flags := cmd.Flags()
	if flags.Changed("samples") {
		opts.SampleCount = fl.samples
	}
	if flags.Changed("seed") {
		opts.Seed = fl.seed
	}
	if flags.Changed("window") {
		opts.Summary.WindowFrac = fl.window
	}
	if flags.Changed("residual-mode") {
		opts.Model.Mode = sampler.ResidualMode(fl.residualMode)
	}
	if flags.Changed("workers") {
		opts.Workers = fl.workers
	}
	return opts
}

func estimateChannels(cmd *cobra.Command, fl *estimateFlags, inputs []types.ChannelInput) (*output.EstimationResult, error) {
	start := time.Now()
	opts := engineOptions(cmd, fl)

	engine, err := estimate.NewEngine(opts)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := engine.EstimateAll(ctx, inputs)
	if err != nil {
		return nil, err
	}

	logging.Info("estimation complete",
		zap.Int("channels", results.Len()),
		zap.Int("samples", opts.SampleCount),
		zap.Duration("elapsed", time.Since(start)))

	return &output.EstimationResult{
		Channels: results.Values(),
		Metadata: output.EstimationMetadata{
			Timestamp:   start.UTC().Format(time.RFC3339),
			Duration:    time.Since(start).Round(time.Millisecond).String(),
			Version:     Version,
			Seed:        opts.Seed,
			SampleCount: opts.SampleCount,
			Model:       opts.Model,
		},
	}, nil
}

func render(cmd *cobra.Command, fl *estimateFlags, result *output.EstimationResult) error {
	cfg := config.Get()
	format := cfg.Output.DefaultFormat
	if fl.format != "" {
		format = fl.format
	}
	formatter, err := output.ForFormat(output.Format(format), fl.noColor || cfg.Output.NoColor)
	if err != nil {
		return err
	}
	if err := formatter.Render(cmd.OutOrStdout(), result); err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	return nil
}
