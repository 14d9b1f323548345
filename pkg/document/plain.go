package document

import (
	"math/big"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Plain converts an ordered tree into plain map[string]any / []any values,
// the shape expected by jq evaluation and schema validation. The input is not
// modified.
func Plain(v any) any {
	switch t := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if t == nil {
			return nil
		}
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = Plain(pair.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Plain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Plain(val)
		}
		return out
	case BigInt:
		return t.Int
	default:
		return v
	}
}

// FromPlain converts plain maps into ordered maps with keys in sorted order,
// so values produced by jq can be encoded deterministically.
func FromPlain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := orderedmap.New[string, any](len(t))
		for _, k := range sortedKeys(t) {
			m.Set(k, FromPlain(t[k]))
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = FromPlain(val)
		}
		return out
	case *big.Int:
		return fromBig(t)
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
