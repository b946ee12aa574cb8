package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlToJSON converts a YAML document to JSON on the node tree. Mapping keys
// keep their document order and timestamps stay the literal text they were
// written as, so an unquoted 2024-01-01 reaches the decoders as "2024-01-01".
func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Kind == 0 {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	if err := writeNode(&buf, &doc); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")

			return nil
		}

		return writeNode(buf, n.Content[0])
	case yaml.AliasNode:
		return writeNode(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')

		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}

			buf.Write(key)
			buf.WriteByte(':')

			if err := writeNode(buf, n.Content[i+1]); err != nil {
				return err
			}
		}

		buf.WriteByte('}')

		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')

		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := writeNode(buf, item); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

		return nil
	case yaml.ScalarNode:
		return writeScalar(buf, n)
	default:
		return fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

func writeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	var value any

	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")

		return nil
	case "!!bool", "!!int", "!!float":
		if err := n.Decode(&value); err != nil {
			return err
		}
	default:
		// !!str, !!timestamp and anything unknown keep their literal text.
		value = n.Value
	}

	out, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}

	buf.Write(out)

	return nil
}
