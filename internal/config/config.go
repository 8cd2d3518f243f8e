// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"budget-brain/core/allocation"
	"budget-brain/core/estimate"
	"budget-brain/core/sampler"
	"budget-brain/core/summary"
	"budget-brain/internal/errors"
	"budget-brain/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Simulation contains sampler and summary settings
	Simulation SimulationConfig `json:"simulation"`

	// Model contains the latent correlation coefficients
	Model ModelConfig `json:"model"`

	// Allocation contains budget allocator weights
	Allocation allocation.Config `json:"allocation"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// SimulationConfig contains Monte Carlo settings
type SimulationConfig struct {
	// SampleCount is the number of joint draws per channel
	SampleCount int `json:"sample_count"`

	// Seed is the run seed
	Seed int64 `json:"seed"`

	// WindowFrac is the half-width of the certainty window around the median
	WindowFrac float64 `json:"window_frac"`

	// TargetWidth is the relative 10-90 width that scores zero stability
	TargetWidth float64 `json:"target_width"`

	// ResidualMode is "fixed" or "posterior"
	ResidualMode sampler.ResidualMode `json:"residual_mode"`

	// Workers bounds concurrent channel estimation
	Workers int `json:"workers"`
}

// ModelConfig contains the one-factor model coefficients
type ModelConfig struct {
	Loadings  sampler.Loadings       `json:"loadings"`
	Residuals sampler.ResidualScales `json:"residuals"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// NoColor disables ANSI colors in CLI output
	NoColor bool `json:"no_color"`
}

// DefaultPath returns $HOME/.budget-brain.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".budget-brain.json")
}

// Default returns a default configuration
func Default() *Config {
	opts := estimate.DefaultOptions()

	return &Config{
		Version: "1.0",
		Simulation: SimulationConfig{
			SampleCount:  opts.SampleCount,
			Seed:         opts.Seed,
			WindowFrac:   opts.Summary.WindowFrac,
			TargetWidth:  opts.Summary.TargetWidth,
			ResidualMode: opts.Model.Mode,
			Workers:      opts.Workers,
		},
		Model: ModelConfig{
			Loadings:  opts.Model.Loadings,
			Residuals: opts.Model.Residuals,
		},
		Allocation: allocation.DefaultConfig(),
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(errors.TypeConfig, "failed to read config", err).WithContext("path", path)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to parse config", err).WithContext("path", path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EngineOptions converts the simulation and model sections into engine options
func (c *Config) EngineOptions() estimate.Options {
	opts := estimate.DefaultOptions()
	opts.SampleCount = c.Simulation.SampleCount
	opts.Seed = c.Simulation.Seed
	opts.Workers = c.Simulation.Workers
	opts.Summary = summary.Options{
		WindowFrac:  c.Simulation.WindowFrac,
		TargetWidth: c.Simulation.TargetWidth,
	}
	opts.Model = sampler.DefaultLatentModel().
		WithLoadings(c.Model.Loadings).
		WithResiduals(c.Model.Residuals)
	opts.Model.Mode = c.Simulation.ResidualMode
	return opts
}

// Validate checks every section and reports the first problem as a config error
func (c *Config) Validate() error {
	if err := c.EngineOptions().Validate(); err != nil {
		return errors.Wrap(errors.TypeConfig, "invalid simulation config", err)
	}
	if err := c.Allocation.Validate(); err != nil {
		return err
	}
	switch c.Output.DefaultFormat {
	case "cli", "json":
	default:
		return errors.Newf(errors.TypeConfig, "unknown output format %q", c.Output.DefaultFormat)
	}
	return nil
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
