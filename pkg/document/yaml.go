package document

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

const maxAliasDepth = 64

// decodeYAML converts the yaml.v3 node tree directly so mapping order is kept.
func decodeYAML(data []byte) (any, bool, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, false, fmt.Errorf("invalid YAML: %w", err)
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return nil, false, nil
	}
	v, err := yamlValue(&root, 0)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func yamlValue(n *yaml.Node, aliasDepth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0], aliasDepth)

	case yaml.AliasNode:
		if aliasDepth >= maxAliasDepth {
			return nil, fmt.Errorf("line %d: YAML aliases nested too deeply", n.Line)
		}
		return yamlValue(n.Alias, aliasDepth+1)

	case yaml.MappingNode:
		m := orderedmap.New[string, any]()
		if err := yamlMerge(m, n, aliasDepth); err != nil {
			return nil, err
		}
		return m, nil

	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := yamlValue(item, aliasDepth)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case yaml.ScalarNode:
		return yamlScalar(n)

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", n.Line, n.Kind)
	}
}

// yamlMerge copies the pairs of mapping node n into m. Merge keys ("<<")
// contribute their pairs without overriding keys set explicitly.
func yamlMerge(m *orderedmap.OrderedMap[string, any], n *yaml.Node, aliasDepth int) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			merges = append(merges, valNode)
			continue
		}
		key, err := yamlKey(keyNode)
		if err != nil {
			return err
		}
		v, err := yamlValue(valNode, aliasDepth)
		if err != nil {
			return err
		}
		m.Set(key, v)
	}

	for _, src := range merges {
		if src.Kind == yaml.AliasNode {
			src = src.Alias
		}
		sources := []*yaml.Node{src}
		if src.Kind == yaml.SequenceNode {
			sources = src.Content
		}
		for _, s := range sources {
			if s.Kind == yaml.AliasNode {
				s = s.Alias
			}
			if s.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: merge key value must be a mapping", s.Line)
			}
			merged := orderedmap.New[string, any]()
			if err := yamlMerge(merged, s, aliasDepth+1); err != nil {
				return err
			}
			for pair := merged.Oldest(); pair != nil; pair = pair.Next() {
				if _, exists := m.Get(pair.Key); !exists {
					m.Set(pair.Key, pair.Value)
				}
			}
		}
	}
	return nil
}

// yamlKey stringifies a mapping key; non-string scalar keys keep their
// literal text.
func yamlKey(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping keys must be scalars", n.Line)
	}
	return n.Value, nil
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!str", "!!timestamp", "!!binary":
		// Timestamps stay textual so dates round-trip unchanged.
		return n.Value, nil
	case "!!null":
		return nil, nil
	case "!!int":
		lit := strings.ReplaceAll(n.Value, "_", "")
		if _, err := strconv.ParseInt(lit, 0, 64); err != nil {
			if b, ok := bigInteger(lit); ok {
				return b, nil
			}
		}
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	switch t := v.(type) {
	case uint64:
		return BigInt{new(big.Int).SetUint64(t)}, nil
	case float64:
		// Integers past uint64 resolve as floats.
		if b, ok := bigInteger(strings.ReplaceAll(n.Value, "_", "")); ok {
			return b, nil
		}
	}
	return v, nil
}

func encodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}
