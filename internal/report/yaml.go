package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

// WriteYAML writes records as a YAML sequence. Keys keep column order.
func WriteYAML(w io.Writer, records []punctuation.Record) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}

	for _, rec := range records {
		seq.Content = append(seq.Content, recordNode(rec))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(seq)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}

func recordNode(rec punctuation.Record) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	columns := Columns()

	for i, cell := range row(rec) {
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: cell}
		if i == 0 {
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: cell}
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: columns[i]},
			value,
		)
	}

	return node
}
