package infer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/invopop/jsonschema"

	"github.com/usestring/schemafill/pkg/completion"
	"github.com/usestring/schemafill/pkg/document"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	v, _, err := document.Decode([]byte(src), document.DetectFormat("", []byte(src)))
	if err != nil {
		t.Fatalf("decode %q: %v", src, err)
	}
	return v
}

func infer(t *testing.T, opts Options, srcs ...string) *Result {
	t.Helper()
	samples := make([]any, 0, len(srcs))
	for _, src := range srcs {
		samples = append(samples, decode(t, src))
	}
	result, err := Infer(opts, samples...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func propertyNames(s *jsonschema.Schema) []string {
	var names []string
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func TestInfer_PrimitiveTypes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"hello"`, "string"},
		{`42`, "integer"},
		{`1.0`, "integer"},
		{`3.14`, "number"},
		{`true`, "boolean"},
		{`null`, "null"},
		{`[]`, "array"},
		{`{}`, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := infer(t, DefaultOptions(), tt.src).Schema.Type
			if got != tt.want {
				t.Errorf("expected type %q, got %q", tt.want, got)
			}
		})
	}
}

func TestInfer_StringFormats(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"2024-01-02"`, "date"},
		{`"2024-01-02T03:04:05Z"`, "date-time"},
		{`"https://example.com/x"`, "uri"},
		{`"ftp://example.com"`, ""},
		{`"hello"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := infer(t, DefaultOptions(), tt.src).Schema.Format
			if got != tt.want {
				t.Errorf("expected format %q, got %q", tt.want, got)
			}
		})
	}

	opts := DefaultOptions()
	opts.Formats = false
	if f := infer(t, opts, `"2024-01-02"`).Schema.Format; f != "" {
		t.Errorf("formats disabled, got %q", f)
	}
}

func TestInfer_KeyOrderFollowsSamples(t *testing.T) {
	result := infer(t, DefaultOptions(), `{"zeta": 1, "alpha": 2}`, `{"alpha": 3, "mid": 4}`)

	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, propertyNames(result.Schema)); diff != "" {
		t.Errorf("property order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"alpha"}, result.Schema.Required); diff != "" {
		t.Errorf("required (-want +got):\n%s", diff)
	}
	if result.AllMatch {
		t.Error("expected samples to differ")
	}
	if result.SampleCount != 2 {
		t.Errorf("expected 2 samples, got %d", result.SampleCount)
	}
}

func TestInfer_NullableOptional(t *testing.T) {
	src := `{"a": null, "b": 1}`

	result := infer(t, DefaultOptions(), src)
	if diff := cmp.Diff([]string{"b"}, result.Schema.Required); diff != "" {
		t.Errorf("required (-want +got):\n%s", diff)
	}

	opts := DefaultOptions()
	opts.NullableOptional = false
	result = infer(t, opts, src)
	if diff := cmp.Diff([]string{"a", "b"}, result.Schema.Required); diff != "" {
		t.Errorf("required (-want +got):\n%s", diff)
	}

	opts.Required = false
	if req := infer(t, opts, src).Schema.Required; req != nil {
		t.Errorf("expected no required list, got %v", req)
	}
}

func TestInfer_MergesTypes(t *testing.T) {
	result := infer(t, DefaultOptions(), `{"n": 1, "s": "2024-01-02", "x": 1}`, `{"n": 1.5, "s": "plain", "x": "one"}`)

	n, _ := result.Schema.Properties.Get("n")
	if n.Type != "number" {
		t.Errorf("integer and number should merge to number, got %q", n.Type)
	}

	s, _ := result.Schema.Properties.Get("s")
	if s.Type != "string" || s.Format != "" {
		t.Errorf("disagreeing formats should be dropped, got %q/%q", s.Type, s.Format)
	}

	x, _ := result.Schema.Properties.Get("x")
	if len(x.AnyOf) != 2 || x.AnyOf[0].Type != "integer" || x.AnyOf[1].Type != "string" {
		t.Errorf("expected anyOf [integer, string], got %+v", x.AnyOf)
	}
}

func TestInfer_ArraysOfObjects(t *testing.T) {
	result := infer(t, DefaultOptions(), `{"users": [{"id": 1, "name": "a"}, {"id": 2}]}`)

	users, _ := result.Schema.Properties.Get("users")
	if users.Type != "array" || users.Items == nil {
		t.Fatalf("expected array with items, got %+v", users)
	}
	if diff := cmp.Diff([]string{"id", "name"}, propertyNames(users.Items)); diff != "" {
		t.Errorf("item properties (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"id"}, users.Items.Required); diff != "" {
		t.Errorf("item required (-want +got):\n%s", diff)
	}

	root := infer(t, DefaultOptions(), `[{"a": 1, "b": 2}, {"a": 3}]`)
	if diff := cmp.Diff([]string{"a"}, root.Schema.Items.Required); diff != "" {
		t.Errorf("root item required (-want +got):\n%s", diff)
	}
}

func TestInfer_AdditionalProperties(t *testing.T) {
	closed := false
	opts := DefaultOptions()
	opts.AdditionalProperties = &closed

	result := infer(t, opts, `{"a": {"b": [{"c": 1}]}}`)
	a, _ := result.Schema.Properties.Get("a")
	b, _ := a.Properties.Get("b")
	for _, s := range []*jsonschema.Schema{result.Schema, a, b.Items} {
		if s.AdditionalProperties != jsonschema.FalseSchema {
			t.Errorf("expected additionalProperties false on %+v", s)
		}
	}
}

func TestInfer_NoSamples(t *testing.T) {
	if _, err := Infer(DefaultOptions()); err == nil {
		t.Fatal("expected error")
	}
}

func TestInfer_DocumentDrivesCompletion(t *testing.T) {
	result := infer(t, DefaultOptions(), `
name: svc
created: 2024-01-02
site: https://svc.example.org
port: 80
tags: [a]
owner:
  email: ops@example.org
  active: true
note: null
`)

	tree, err := result.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	out, err := document.Encode(tree, document.JSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(out), `"$schema": "`+Draft+`"`) {
		t.Errorf("expected $schema in:\n%s", out)
	}

	schema, err := completion.ParseSchema(tree)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	generated, err := completion.New(completion.Options{}, nil).Generate(schema)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err := document.Encode(generated, document.JSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := `{
  "name": "string",
  "created": "1970-01-01",
  "site": "http://example.com/",
  "port": null,
  "tags": null,
  "owner": {
    "email": "string",
    "active": false
  }
}
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("generated document (-want +got):\n%s", diff)
	}
}
