package input

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// YAMLLoader reads a document with a top-level "channels" sequence, or a bare sequence
type YAMLLoader struct{}

// Name returns the format name
func (YAMLLoader) Name() string { return "yaml" }

// Extensions returns the handled extensions
func (YAMLLoader) Extensions() []string { return []string{".yaml", ".yml"} }

// Decode parses YAML channel records. Unknown keys are rejected.
func (YAMLLoader) Decode(src []byte, filename string) ([]types.ChannelInput, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, errors.Parsing("decode YAML channel file", err).WithContext("file", filename)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var records []record
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := dec.Decode(&records); err != nil {
			return nil, errors.Parsing("decode YAML channel list", err).WithContext("file", filename)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Channels []record `yaml:"channels"`
		}
		if err := dec.Decode(&wrapped); err != nil {
			return nil, errors.Parsing("decode YAML channels", err).WithContext("file", filename)
		}
		records = wrapped.Channels
	default:
		return nil, errors.Parsing("YAML channel file must be a list or a mapping with channels", nil).
			WithContext("file", filename).
			WithContext("line", doc.Line)
	}
	return toInputs(records, filename)
}
