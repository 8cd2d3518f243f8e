// Package cmd - allocate command
package cmd

import (
	"github.com/spf13/cobra"

	"budget-brain/core/allocation"
	"budget-brain/core/determinism"
	"budget-brain/core/explanation"
	"budget-brain/core/output"
	"budget-brain/internal/config"
	"budget-brain/internal/errors"
)

var (
	allocFlags     estimateFlags
	allocBudget    string
	allocCertainty string
	allocCurrency  string
	allocExplain   bool
)

// allocateCmd splits a budget across channels
var allocateCmd = &cobra.Command{
	Use:   "allocate <file>",
	Short: "Recommend a budget split across channels",
	Long: `Estimate every channel in the input file, then score each one on
conversion efficiency and certainty and turn the scores into budget shares.

Examples:
  budget-brain allocate platforms.json
  budget-brain allocate --budget 25000 --certainty-source stability platforms.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAllocate,
}

func init() {
	addSimulationFlags(allocateCmd, &allocFlags)

	f := allocateCmd.Flags()
	f.StringVarP(&allocBudget, "budget", "b", "", "total budget to split, e.g. 10000.00")
	f.StringVar(&allocCertainty, "certainty-source", "", "certainty score used for ranking (certainty, stability)")
	f.StringVar(&allocCurrency, "currency", "", "budget currency code")
	f.BoolVar(&allocExplain, "explain", true, "justify each channel's share")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	inputs, err := loadChannels(args, allocFlags.single)
	if err != nil {
		return err
	}

	cfg := config.Get().Allocation
	if allocCertainty != "" {
		cfg.CertaintySource = allocation.CertaintySource(allocCertainty)
	}
	if allocCurrency != "" {
		cfg.Currency = allocCurrency
	}

	var total *determinism.Money
	if allocBudget != "" {
		m, err := determinism.NewMoney(allocBudget, cfg.Currency)
		if err != nil {
			return errors.Wrap(errors.TypeInput, "invalid --budget", err)
		}
		if m.Amount().IsNegative() {
			return errors.Inputf("--budget must be >= 0, got %s", allocBudget)
		}
		total = &m
	}

	result, err := estimateChannels(cmd, &allocFlags, inputs)
	if err != nil {
		return err
	}
	if err := allocate(cfg, result, allocExplain); err != nil {
		return err
	}
	if total != nil {
		result.Allocation.SplitBudget(*total)
	}
	return render(cmd, &allocFlags, result)
}

func allocate(cfg allocation.Config, result *output.EstimationResult, explain bool) error {
	allocator, err := allocation.New(cfg)
	if err != nil {
		return err
	}
	alloc, err := allocator.Allocate(result.Channels)
	if err != nil {
		return err
	}
	result.Allocation = alloc

	if !explain {
		return nil
	}
	result.Explanations, err = explanation.Explain(alloc, result.Channels, allocator.Config())
	return err
}
