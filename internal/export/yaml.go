package export

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports rows as a YAML sequence of ordered mappings
type YAMLExporter struct{}

// Export exports rows to YAML format
func (e *YAMLExporter) Export(rows []Row, w io.Writer) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		mapping := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range row {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Label}
			val := &yaml.Node{}
			if err := val.Encode(f.Value); err != nil {
				return fmt.Errorf("failed to encode %s: %w", f.Label, err)
			}
			mapping.Content = append(mapping.Content, key, val)
		}
		doc.Content = append(doc.Content, mapping)
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	enc.SetIndent(2)
	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
