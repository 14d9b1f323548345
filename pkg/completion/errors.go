package completion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilSchema is returned when a nil schema is passed to the engine.
var ErrNilSchema = errors.New("schema is nil")

// SchemaError reports a schema that cannot drive completion, such as a
// required field with no entry in properties or a keyword of the wrong type.
type SchemaError struct {
	Path string // JSON Pointer into the document (or schema, at parse time)
	Msg  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at %s: %s", displayPath(e.Path), e.Msg)
}

// TypeMismatchError reports present data whose shape disagrees with the
// schema construct that governs it.
type TypeMismatchError struct {
	Path string
	Want string // "mapping" or "sequence"
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at %s: expected %s, got %s", displayPath(e.Path), e.Want, e.Got)
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// childPath appends one reference token to a JSON Pointer.
func childPath(parent, token string) string {
	return parent + "/" + pointerEscaper.Replace(token)
}

// shapeOf names the JSON shape of a decoded value for error messages.
func shapeOf(v any) string {
	if _, ok := asMapping(v); ok {
		return "mapping"
	}
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
