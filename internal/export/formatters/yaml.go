package formatters

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter writes a mapping from file name to element metadata, in
// index order.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// ContentType returns the MIME content type.
func (f *YAMLFormatter) ContentType() string {
	return "application/yaml"
}

// FileExtension returns the typical file extension.
func (f *YAMLFormatter) FileExtension() string {
	return ".yaml"
}

// Format renders the index as a YAML mapping node so key order is kept.
func (f *YAMLFormatter) Format(index Index) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range index {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.FileName}
		value := &yaml.Node{}
		if err := value.Encode(toRecord(e)); err != nil {
			return nil, fmt.Errorf("failed to encode entry %s; %w", e.FileName, err)
		}
		root.Content = append(root.Content, key, value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode YAML; %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish YAML; %w", err)
	}
	return buf.Bytes(), nil
}
