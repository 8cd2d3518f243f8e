package input

import (
	"bytes"
	"encoding/json"

	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// JSONLoader reads either a bare array of records or {"channels": [...]}.
// Unknown keys are rejected so a misspelled metric cannot decode as zero.
type JSONLoader struct{}

// Name returns the format name
func (JSONLoader) Name() string { return "json" }

// Extensions returns the handled extensions
func (JSONLoader) Extensions() []string { return []string{".json"} }

// Decode parses JSON channel records
func (JSONLoader) Decode(src []byte, filename string) ([]types.ChannelInput, error) {
	trimmed := bytes.TrimSpace(src)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var records []record
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc struct {
			Channels []record `json:"channels"`
		}
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Parsing("decode JSON channel file", err).WithContext("file", filename)
		}
		records = doc.Channels
	} else if err := dec.Decode(&records); err != nil {
		return nil, errors.Parsing("decode JSON channel file", err).WithContext("file", filename)
	}
	return toInputs(records, filename)
}
