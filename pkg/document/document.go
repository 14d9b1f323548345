package document

import (
	"fmt"
)

// Decode parses data in the given format into an ordered tree.
// present is false when the input holds no document at all (empty, or only
// whitespace and comments), which is distinct from an explicit null.
func Decode(data []byte, f Format) (v any, present bool, err error) {
	switch f {
	case JSON:
		return decodeJSON(data)
	case YAML:
		return decodeYAML(data)
	default:
		return nil, false, fmt.Errorf("unknown document format: %q", f)
	}
}

// Encode serializes an ordered tree in the given format.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return encodeJSON(v)
	case YAML:
		return encodeYAML(v)
	default:
		return nil, fmt.Errorf("unknown document format: %q", f)
	}
}
