package completion

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// mapping abstracts over the two mapping representations a data tree may use.
type mapping interface {
	get(key string) (any, bool)
	set(key string, v any)
	keys() []string
	value() any
}

type orderedMapping struct {
	m *orderedmap.OrderedMap[string, any]
}

func (o orderedMapping) get(key string) (any, bool) { return o.m.Get(key) }
func (o orderedMapping) set(key string, v any)      { o.m.Set(key, v) }
func (o orderedMapping) value() any                 { return o.m }

func (o orderedMapping) keys() []string {
	keys := make([]string, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

type plainMapping map[string]any

func (p plainMapping) get(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}
func (p plainMapping) set(key string, v any) { p[key] = v }
func (p plainMapping) value() any            { return map[string]any(p) }

// keys are sorted so traversal of unordered maps stays deterministic.
func (p plainMapping) keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asMapping(v any) (mapping, bool) {
	switch m := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if m == nil {
			return nil, false
		}
		return orderedMapping{m}, true
	case map[string]any:
		if m == nil {
			return nil, false
		}
		return plainMapping(m), true
	}
	return nil, false
}

func newMapping() mapping {
	return orderedMapping{orderedmap.New[string, any]()}
}

// deepCopy copies mappings and sequences so the result shares no container
// with v. Ordered maps stay ordered and plain maps stay plain.
func deepCopy(v any) any {
	switch t := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if t == nil {
			return t
		}
		out := orderedmap.New[string, any](t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, deepCopy(pair.Value))
		}
		return out
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
