package input

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// HCLLoader reads channel blocks:
//
//	channel "Google" {
//	  cpm_mean = 8.0
//	  cpm_cv   = 0.25
//	  ctr_mean = 0.018
//	  ctr_std  = 0.006
//	  cvr_mean = 0.04
//	  cvr_std  = 0.015
//	}
type HCLLoader struct{}

type hclFile struct {
	Channels []hclChannel `hcl:"channel,block"`
}

type hclChannel struct {
	Name    string  `hcl:"name,label"`
	CPMMean float64 `hcl:"cpm_mean"`
	CPMCV   float64 `hcl:"cpm_cv"`
	CTRMean float64 `hcl:"ctr_mean"`
	CTRStd  float64 `hcl:"ctr_std"`
	CVRMean float64 `hcl:"cvr_mean"`
	CVRStd  float64 `hcl:"cvr_std"`
}

// Name returns the format name
func (HCLLoader) Name() string { return "hcl" }

// Extensions returns the handled extensions
func (HCLLoader) Extensions() []string { return []string{".hcl"} }

// Decode parses HCL channel blocks
func (HCLLoader) Decode(src []byte, filename string) ([]types.ChannelInput, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError("parse HCL channel file", filename, diags)
	}

	var doc hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, diagError("decode HCL channel blocks", filename, diags)
	}

	out := make([]types.ChannelInput, 0, len(doc.Channels))
	for _, c := range doc.Channels {
		out = append(out, types.ChannelInput{
			Channel: c.Name,
			CPMMean: c.CPMMean,
			CPMCV:   c.CPMCV,
			CTRMean: c.CTRMean,
			CTRStd:  c.CTRStd,
			CVRMean: c.CVRMean,
			CVRStd:  c.CVRStd,
		})
	}
	return out, nil
}

// diagError reports the first error diagnostic with its source line
func diagError(msg, filename string, diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if d.Subject != nil {
			line = d.Subject.Start.Line
		}
		return errors.Parsing(msg, fmt.Errorf("%s: %s", d.Summary, d.Detail)).
			WithContext("file", filename).
			WithContext("line", line)
	}
	return errors.Parsing(msg, diags).WithContext("file", filename)
}
