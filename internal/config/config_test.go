package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"budget-brain/core/estimate"
	"budget-brain/core/sampler"
	"budget-brain/internal/errors"
)

func TestDefaultMatchesEngineDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if diff := cmp.Diff(estimate.DefaultOptions(), cfg.EngineOptions()); diff != "" {
		t.Errorf("EngineOptions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Simulation.Seed = 7
	cfg.Simulation.ResidualMode = sampler.ResidualPosterior
	cfg.Output.NoColor = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got := loaded.EngineOptions().Model.Mode; got != sampler.ResidualPosterior {
		t.Errorf("Mode = %q, want posterior", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"simulation": {"sample_count": 2000}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.SampleCount != 2000 {
		t.Errorf("SampleCount = %d, want 2000", cfg.Simulation.SampleCount)
	}
	if cfg.Simulation.Seed != 123 {
		t.Errorf("Seed = %d, want default 123", cfg.Simulation.Seed)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"simulation": `},
		{"zero samples", `{"simulation": {"sample_count": 0}}`},
		{"bad mode", `{"simulation": {"residual_mode": "adaptive"}}`},
		{"bad format", `{"output": {"default_format": "xml"}}`},
		{"bad source", `{"allocation": {"certainty_source": "vibes"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("Load error = %v, want config error", err)
			}
		})
	}
}
