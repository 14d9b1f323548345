package completion

import (
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the completion construct that applies at a schema node.
type Kind int

// Kinds in dispatch priority order.
const (
	KindObject  Kind = iota // required present
	KindOpenMap             // additionalProperties is a schema
	KindArray               // items present and item mode enabled
	KindLeaf                // anything else
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindOpenMap:
		return "open-map"
	case KindArray:
		return "array"
	default:
		return "leaf"
	}
}

// Schema is the subset of a JSON Schema node that drives completion.
type Schema struct {
	// Required lists the field names that must exist, in schema order.
	// Nil when the keyword is absent; an empty slice still makes the node an object.
	Required   []string
	Properties *orderedmap.OrderedMap[string, *Schema]
	// AdditionalProperties is nil when absent or when given as a boolean.
	AdditionalProperties *Schema
	Items                *Schema
	Enum                 []any
	Types                []string
	Format               string
}

// Kind resolves which construct applies to s. itemMode mirrors
// [Options.AddItem]: without it an items schema is treated as a leaf.
func (s *Schema) Kind(itemMode bool) Kind {
	switch {
	case s.Required != nil:
		return KindObject
	case s.AdditionalProperties != nil:
		return KindOpenMap
	case itemMode && s.Items != nil:
		return KindArray
	default:
		return KindLeaf
	}
}

// Property returns the schema declared for name under properties.
func (s *Schema) Property(name string) (*Schema, bool) {
	if s.Properties == nil {
		return nil, false
	}
	return s.Properties.Get(name)
}

// HasType reports whether t is one of the node's declared types.
func (s *Schema) HasType(t string) bool {
	return slices.Contains(s.Types, t)
}

// ParseSchema converts a decoded JSON Schema document into a Schema tree.
// Unknown keywords are ignored; keywords with the wrong JSON type produce a
// *SchemaError whose Path points into the schema document.
func ParseSchema(v any) (*Schema, error) {
	return parseSchema(v, "")
}

func parseSchema(v any, path string) (*Schema, error) {
	// Boolean schemas accept anything and carry no structure.
	if _, ok := v.(bool); ok {
		return &Schema{}, nil
	}
	m, ok := asMapping(v)
	if !ok {
		return nil, &SchemaError{Path: path, Msg: "schema must be an object, got " + shapeOf(v)}
	}

	s := &Schema{}

	if raw, ok := m.get("required"); ok {
		names, err := stringList(raw)
		if err != nil {
			return nil, &SchemaError{Path: childPath(path, "required"), Msg: err.Error()}
		}
		if names == nil {
			names = []string{}
		}
		s.Required = names
	}

	if raw, ok := m.get("properties"); ok {
		props, ok := asMapping(raw)
		if !ok {
			return nil, &SchemaError{Path: childPath(path, "properties"), Msg: "must be an object, got " + shapeOf(raw)}
		}
		s.Properties = orderedmap.New[string, *Schema]()
		propsPath := childPath(path, "properties")
		for _, name := range props.keys() {
			child, _ := props.get(name)
			parsed, err := parseSchema(child, childPath(propsPath, name))
			if err != nil {
				return nil, err
			}
			s.Properties.Set(name, parsed)
		}
	}

	if raw, ok := m.get("additionalProperties"); ok {
		if _, isBool := raw.(bool); !isBool {
			child, err := parseSchema(raw, childPath(path, "additionalProperties"))
			if err != nil {
				return nil, err
			}
			s.AdditionalProperties = child
		}
	}

	if raw, ok := m.get("items"); ok {
		switch raw.(type) {
		case bool, []any:
			// Boolean and tuple forms carry no single element schema.
		default:
			child, err := parseSchema(raw, childPath(path, "items"))
			if err != nil {
				return nil, err
			}
			s.Items = child
		}
	}

	if raw, ok := m.get("enum"); ok {
		values, ok := raw.([]any)
		if !ok {
			return nil, &SchemaError{Path: childPath(path, "enum"), Msg: "must be an array, got " + shapeOf(raw)}
		}
		s.Enum = values
	}

	if raw, ok := m.get("type"); ok {
		switch t := raw.(type) {
		case string:
			s.Types = []string{t}
		default:
			types, err := stringList(raw)
			if err != nil {
				return nil, &SchemaError{Path: childPath(path, "type"), Msg: err.Error()}
			}
			s.Types = types
		}
	}

	if raw, ok := m.get("format"); ok {
		f, ok := raw.(string)
		if !ok {
			return nil, &SchemaError{Path: childPath(path, "format"), Msg: "must be a string, got " + shapeOf(raw)}
		}
		s.Format = f
	}

	return s, nil
}

func stringList(raw any) ([]string, error) {
	switch list := raw.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d must be a string, got %s", i, shapeOf(item))
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be an array of strings, got %s", shapeOf(raw))
	}
}
