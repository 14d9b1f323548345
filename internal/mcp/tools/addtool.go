package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after CheckOutputSchema has accepted its output
// type. It panics at registration instead of failing on the first call.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics when the zero value of T would be rejected by the
// output schema the SDK infers for T.
//
// Two shapes trip it: a slice without omitempty or omitzero, which marshals
// as null against "type": "array", and json.RawMessage anywhere in T, which
// the schema generator treats as a byte array. Completed documents travel as
// text so neither is needed.
func CheckOutputSchema[T any](toolName string) {
	if err := outputSchemaProblem(reflect.TypeFor[T]()); err != nil {
		panic(fmt.Sprintf("AddTool %q: %v", toolName, err))
	}
}

func outputSchemaProblem(rt reflect.Type) error {
	if rt == reflect.TypeFor[any]() {
		return nil
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if paths := rawMessagePaths(rt, "", map[reflect.Type]bool{}); len(paths) > 0 {
		return fmt.Errorf("output type %s holds json.RawMessage at %s; return the document as a string instead",
			rt, strings.Join(paths, ", "))
	}

	// Inference failures are reported by the SDK itself.
	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return nil
	}
	var zero map[string]any
	if err := json.Unmarshal(data, &zero); err != nil {
		return nil
	}
	if err := resolved.Validate(&zero); err != nil {
		return fmt.Errorf("zero value of output type %s (%s) fails its schema: %v; add omitempty to slice fields",
			rt, data, err)
	}
	return nil
}

var rawMessageType = reflect.TypeFor[json.RawMessage]()

func rawMessagePaths(t reflect.Type, path string, seen map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == rawMessageType {
		return []string{path}
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	defer delete(seen, t)

	var paths []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() {
				paths = append(paths, rawMessagePaths(f.Type, joinPath(path, f.Name), seen)...)
			}
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		paths = append(paths, rawMessagePaths(t.Elem(), path+"[]", seen)...)
	}
	return paths
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
