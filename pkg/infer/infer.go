// Package infer derives a JSON Schema from sample documents. The result uses
// only the keywords the completion engine understands, so a schema inferred
// from one complete document can be used to fill in others.
package infer

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/usestring/schemafill/pkg/document"
)

// Draft is the $schema URI stamped on inferred schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Options controls schema inference.
type Options struct {
	// Required marks properties present in every sample as required.
	Required bool
	// NullableOptional leaves properties that are ever null out of required.
	NullableOptional bool
	// Formats tags strings that parse as dates, date-times or URIs in every
	// sample with the matching format keyword.
	Formats bool
	// AdditionalProperties, when set, is applied to every object schema.
	AdditionalProperties *bool
}

// DefaultOptions returns the options used by the CLI and MCP tool.
func DefaultOptions() Options {
	return Options{Required: true, NullableOptional: true, Formats: true}
}

// Result is an inferred schema with sample metadata.
type Result struct {
	Schema      *jsonschema.Schema
	SampleCount int
	// AllMatch is true when every sample produced the same schema.
	AllMatch bool
}

// Infer builds a schema covering all samples. Samples are decoded trees as
// returned by document.Decode; property order follows first appearance.
func Infer(opts Options, samples ...any) (*Result, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to infer from")
	}

	schemas := make([]*jsonschema.Schema, 0, len(samples))
	for _, s := range samples {
		schemas = append(schemas, fromValue(s, opts))
	}

	allMatch := true
	if len(schemas) > 1 {
		first, err := json.Marshal(schemas[0])
		if err != nil {
			return nil, fmt.Errorf("marshaling schema: %w", err)
		}
		for _, s := range schemas[1:] {
			other, err := json.Marshal(s)
			if err != nil {
				return nil, fmt.Errorf("marshaling schema: %w", err)
			}
			if string(first) != string(other) {
				allMatch = false
				break
			}
		}
	}

	merged := merge(schemas)
	if opts.Required {
		if merged.Type == "array" && merged.Items != nil {
			var items []any
			for _, s := range samples {
				if list, ok := s.([]any); ok {
					items = append(items, list...)
				}
			}
			markRequired(merged.Items, items, opts.NullableOptional)
		} else {
			markRequired(merged, samples, opts.NullableOptional)
		}
	}
	if opts.AdditionalProperties != nil {
		applyAdditionalProperties(merged, *opts.AdditionalProperties)
	}
	merged.Version = Draft

	return &Result{Schema: merged, SampleCount: len(samples), AllMatch: allMatch}, nil
}

// Document returns the schema as an ordered tree ready for document.Encode
// or completion.ParseSchema.
func (r *Result) Document() (any, error) {
	data, err := json.Marshal(r.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	v, _, err := document.Decode(data, document.JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return v, nil
}

type entry struct {
	key   string
	value any
}

// entries lists the members of either mapping representation, ordered maps
// in insertion order and plain maps sorted.
func entries(v any) ([]entry, bool) {
	switch m := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if m == nil {
			return nil, false
		}
		out := make([]entry, 0, m.Len())
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, entry{pair.Key, pair.Value})
		}
		return out, true
	case map[string]any:
		if m == nil {
			return nil, false
		}
		ordered, _ := document.FromPlain(m).(*orderedmap.OrderedMap[string, any])
		return entries(ordered)
	}
	return nil, false
}

func fromValue(v any, opts Options) *jsonschema.Schema {
	if members, ok := entries(v); ok {
		s := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		for _, e := range members {
			s.Properties.Set(e.key, fromValue(e.value, opts))
		}
		return s
	}

	switch val := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "null"}
	case bool:
		return &jsonschema.Schema{Type: "boolean"}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, document.BigInt:
		return &jsonschema.Schema{Type: "integer"}
	case float64:
		if math.Trunc(val) == val && !math.IsInf(val, 0) && !math.IsNaN(val) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}
	case string:
		s := &jsonschema.Schema{Type: "string"}
		if opts.Formats {
			s.Format = stringFormat(val)
		}
		return s
	case []any:
		s := &jsonschema.Schema{Type: "array"}
		if len(val) > 0 {
			items := make([]*jsonschema.Schema, 0, len(val))
			for _, item := range val {
				items = append(items, fromValue(item, opts))
			}
			s.Items = merge(items)
		}
		return s
	default:
		return &jsonschema.Schema{}
	}
}

func stringFormat(s string) string {
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return "date"
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return "date-time"
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return "uri"
	}
	return ""
}

func merge(schemas []*jsonschema.Schema) *jsonschema.Schema {
	switch len(schemas) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return schemas[0]
	}

	var order []string
	byType := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Type == "" {
			continue
		}
		if _, seen := byType[s.Type]; !seen {
			order = append(order, s.Type)
		}
		byType[s.Type] = append(byType[s.Type], s)
	}

	// An integer seen alongside a fraction is a number.
	if ints, ok := byType["integer"]; ok {
		if _, hasNumber := byType["number"]; hasNumber {
			byType["number"] = append(byType["number"], ints...)
			delete(byType, "integer")
			order = without(order, "integer")
		}
	}

	variants := make([]*jsonschema.Schema, 0, len(order))
	for _, t := range order {
		group := byType[t]
		switch t {
		case "object":
			variants = append(variants, mergeObjects(group))
		case "array":
			variants = append(variants, mergeArrays(group))
		case "string":
			variants = append(variants, mergeStrings(group))
		default:
			variants = append(variants, &jsonschema.Schema{Type: t})
		}
	}

	switch len(variants) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return variants[0]
	}
	return &jsonschema.Schema{AnyOf: variants}
}

func without(list []string, drop string) []string {
	out := list[:0]
	for _, s := range list {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}

func mergeObjects(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}

	var keys []string
	props := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Properties == nil {
			continue
		}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if _, seen := props[pair.Key]; !seen {
				keys = append(keys, pair.Key)
			}
			props[pair.Key] = append(props[pair.Key], pair.Value)
		}
	}

	merged := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
	for _, k := range keys {
		merged.Properties.Set(k, merge(props[k]))
	}
	return merged
}

func mergeArrays(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	var items []*jsonschema.Schema
	for _, s := range schemas {
		if s.Items != nil {
			items = append(items, s.Items)
		}
	}
	merged := &jsonschema.Schema{Type: "array"}
	if len(items) > 0 {
		merged.Items = merge(items)
	}
	return merged
}

// mergeStrings keeps a format only when every sample agreed on it.
func mergeStrings(schemas []*jsonschema.Schema) *jsonschema.Schema {
	format := schemas[0].Format
	for _, s := range schemas[1:] {
		if s.Format != format {
			format = ""
			break
		}
	}
	return &jsonschema.Schema{Type: "string", Format: format}
}

// markRequired lists the properties every object sample carries. Arrays of
// objects are judged across all of their items.
func markRequired(s *jsonschema.Schema, samples []any, nullableOptional bool) {
	if s.Type != "object" || s.Properties == nil {
		return
	}

	var objects [][]entry
	for _, sample := range samples {
		if members, ok := entries(sample); ok {
			objects = append(objects, members)
		}
	}
	if len(objects) == 0 {
		return
	}

	counts := make(map[string]int)
	nullable := make(map[string]bool)
	nested := make(map[string][]any)
	for _, members := range objects {
		for _, e := range members {
			counts[e.key]++
			if e.value == nil {
				nullable[e.key] = true
				continue
			}
			if items, ok := e.value.([]any); ok {
				nested[e.key] = append(nested[e.key], items...)
			} else {
				nested[e.key] = append(nested[e.key], e.value)
			}
		}
	}

	required := []string{}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if counts[pair.Key] != len(objects) {
			continue
		}
		if nullableOptional && nullable[pair.Key] {
			continue
		}
		required = append(required, pair.Key)
	}
	s.Required = required

	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		switch {
		case prop.Type == "object":
			markRequired(prop, nested[pair.Key], nullableOptional)
		case prop.Type == "array" && prop.Items != nil && prop.Items.Type == "object":
			markRequired(prop.Items, nested[pair.Key], nullableOptional)
		}
	}
}

func applyAdditionalProperties(s *jsonschema.Schema, allowed bool) {
	if s == nil {
		return
	}
	if s.Type == "object" {
		if allowed {
			s.AdditionalProperties = jsonschema.TrueSchema
		} else {
			s.AdditionalProperties = jsonschema.FalseSchema
		}
		if s.Properties != nil {
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				applyAdditionalProperties(pair.Value, allowed)
			}
		}
	}
	if s.Type == "array" {
		applyAdditionalProperties(s.Items, allowed)
	}
	for _, v := range s.AnyOf {
		applyAdditionalProperties(v, allowed)
	}
}
