package input

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

var (
	google = types.ChannelInput{Channel: "Google", CPMMean: 8, CPMCV: 0.25, CTRMean: 0.018, CTRStd: 0.006, CVRMean: 0.04, CVRStd: 0.015}
	meta   = types.ChannelInput{Channel: "Meta", CPMMean: 10.5, CPMCV: 0.3, CTRMean: 0.012, CTRStd: 0.004, CVRMean: 0.03, CVRStd: 0.01}
)

func TestLoadFile(t *testing.T) {
	tests := []struct {
		file string
		want []types.ChannelInput
	}{
		{"platforms.json", []types.ChannelInput{google, meta}},
		{"platforms.hcl", []types.ChannelInput{google, meta}},
		{"platforms.yaml", []types.ChannelInput{
			{Channel: "TikTok", CPMMean: 6.2, CPMCV: 0.35, CTRMean: 0.021, CTRStd: 0.008, CVRMean: 0.022, CVRStd: 0.009},
			{Channel: "LinkedIn", CPMMean: 33, CPMCV: 0.2, CTRMean: 0.006, CTRStd: 0.002, CVRMean: 0.06, CVRStd: 0.02},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := LoadFile(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("channels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeVariants(t *testing.T) {
	wrapped := []byte(`{"channels": [{"channel": "Google", "cpm_mean": 8, "cpm_cv": 0.25, "ctr_mean": 0.018, "ctr_std": 0.006, "cvr_mean": 0.04, "cvr_std": 0.015}]}`)
	got, err := JSONLoader{}.Decode(wrapped, "inline.json")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]types.ChannelInput{google}, got); diff != "" {
		t.Errorf("wrapped JSON mismatch:\n%s", diff)
	}

	list := []byte("- company: Google\n  cpm_mean: 8\n  cpm_cv: 0.25\n  ctr_mean: 0.018\n  ctr_std: 0.006\n  cvr_mean: 0.04\n  cvr_std: 0.015\n")
	got, err = YAMLLoader{}.Decode(list, "inline.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]types.ChannelInput{google}, got); diff != "" {
		t.Errorf("bare YAML list mismatch:\n%s", diff)
	}

	zeros := []byte(`[{"channel": "Quiet", "cpm_mean": 5, "cpm_cv": 0, "ctr_mean": 0, "ctr_std": 0, "cvr_mean": 0, "cvr_std": 0}]`)
	got, err = JSONLoader{}.Decode(zeros, "zeros.json")
	if err != nil {
		t.Fatalf("explicit zeros rejected: %v", err)
	}
	if diff := cmp.Diff([]types.ChannelInput{{Channel: "Quiet", CPMMean: 5}}, got); diff != "" {
		t.Errorf("explicit zeros mismatch:\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		loader Loader
		src    string
	}{
		{"bad json", JSONLoader{}, `[{"company": }]`},
		{"bad yaml", YAMLLoader{}, "channels: [unclosed"},
		{"scalar yaml", YAMLLoader{}, "42"},
		{"json missing key", JSONLoader{}, `[{"company": "Google", "cpm_mean": 8, "cpm_cv": 0.25, "ctr_mean": 0.018, "ctr_std": 0.006, "cvr_mean": 0.04}]`},
		{"json misspelled key", JSONLoader{}, `[{"company": "Google", "cpm_mean": 8, "cpm_cv": 0.25, "ctr_meen": 0.018, "ctr_std": 0.006, "cvr_mean": 0.04, "cvr_std": 0.015}]`},
		{"json wrapped unknown key", JSONLoader{}, `{"channels": [], "budget": 100}`},
		{"yaml missing keys", YAMLLoader{}, "- company: Google\n  cpm_mean: 8\n"},
		{"yaml misspelled key", YAMLLoader{}, "channels:\n  - channel: Google\n    cpm_mean: 8\n    cpm_cv: 0.25\n    ctr_mean: 0.018\n    ctr_std: 0.006\n    cvr_mean: 0.04\n    cvr_sd: 0.015\n"},
		{"bad hcl", HCLLoader{}, `channel "x" {`},
		{"hcl wrong type", HCLLoader{}, `channel "x" {
  cpm_mean = "lots"
  cpm_cv = 0.1
  ctr_mean = 0.1
  ctr_std = 0.1
  cvr_mean = 0.1
  cvr_std = 0.1
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.loader.Decode([]byte(tt.src), "inline")
			if !errors.IsType(err, errors.TypeParsing) {
				t.Errorf("error = %v, want parsing error", err)
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join("testdata", "missing_attr.hcl")); !errors.IsType(err, errors.TypeParsing) {
		t.Errorf("missing attribute error = %v, want parsing error", err)
	}
	if _, err := LoadFile("channels.csv"); !errors.IsType(err, errors.TypeNotSupported) {
		t.Errorf("csv error = %v, want not supported", err)
	}
	if _, err := LoadFile(filepath.Join("testdata", "nope.json")); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("missing file error = %v, want input error", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(JSONLoader{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(JSONLoader{}); err == nil {
		t.Error("expected duplicate registration error")
	}
	if diff := cmp.Diff([]string{"json", "yaml", "hcl"}, Default().Formats()); diff != "" {
		t.Errorf("default formats mismatch:\n%s", diff)
	}
	if l, err := Default().ForPath("x/CHANNELS.YML"); err != nil || l.Name() != "yaml" {
		t.Errorf("ForPath(.YML) = %v, %v", l, err)
	}
}
