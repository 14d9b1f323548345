package completion

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/schemafill/pkg/document"
)

func mustSchema(t *testing.T, src string) *Schema {
	t.Helper()
	tree, _, err := document.Decode([]byte(src), document.JSON)
	require.NoError(t, err)
	s, err := ParseSchema(tree)
	require.NoError(t, err)
	return s
}

func mustDoc(t *testing.T, src string) any {
	t.Helper()
	v, present, err := document.Decode([]byte(src), document.JSON)
	require.NoError(t, err)
	require.True(t, present)
	return v
}

func encode(t *testing.T, v any) string {
	t.Helper()
	out, err := document.Encode(v, document.JSON)
	require.NoError(t, err)
	return string(out)
}

const configSchema = `{
	"type": "object",
	"required": ["name", "tags", "owner", "created", "homepage", "level"],
	"properties": {
		"name": {"type": "string"},
		"tags": {"additionalProperties": {"type": "boolean"}},
		"owner": {
			"required": ["email", "active"],
			"properties": {
				"email": {"type": ["string", "null"]},
				"active": {"type": "boolean"},
				"nickname": {"type": "string"}
			}
		},
		"created": {"type": "string", "format": "date"},
		"homepage": {"type": "string", "format": "uri"},
		"level": {"type": "string", "enum": ["high", "low"]},
		"notes": {"type": "string"}
	}
}`

func TestEngine_Generate_FromScratch(t *testing.T) {
	eng := New(Options{}, nil)

	out, err := eng.Generate(mustSchema(t, configSchema))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "string",
		"tags": {},
		"owner": {"email": "string", "active": false},
		"created": "1970-01-01",
		"homepage": "http://example.com/",
		"level": "high"
	}`, encode(t, out))
}

func TestEngine_Complete_EndToEnd(t *testing.T) {
	schema := mustSchema(t, `{
		"required": ["name", "tags"],
		"properties": {
			"name": {"type": "string"},
			"tags": {"additionalProperties": {"type": "boolean"}}
		}
	}`)
	eng := New(Options{}, nil)

	out, err := eng.Complete(schema, mustDoc(t, `{"name": "X"}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"X\",\n  \"tags\": {}\n}\n", encode(t, out))
}

func TestEngine_Complete_PreservesExistingValues(t *testing.T) {
	eng := New(Options{AddSample: true, AddItem: true}, nil)
	doc := mustDoc(t, `{
		"name": "svc",
		"owner": {"email": null, "nickname": "bob"},
		"level": "low",
		"notes": "kept",
		"extra": [1, 2]
	}`)

	out, err := eng.Complete(mustSchema(t, configSchema), doc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "svc",
		"owner": {"email": null, "nickname": "bob", "active": false},
		"level": "low",
		"notes": "kept",
		"extra": [1, 2],
		"tags": {"Sample": false},
		"created": "1970-01-01",
		"homepage": "http://example.com/"
	}`, encode(t, out))
}

func TestEngine_Complete_AppendsMissingKeysInRequiredOrder(t *testing.T) {
	schema := mustSchema(t, `{
		"required": ["c", "a", "b"],
		"properties": {"a": {"type": "string"}, "b": {"type": "string"}, "c": {"type": "string"}}
	}`)
	eng := New(Options{}, nil)

	out, err := eng.Complete(schema, mustDoc(t, `{"z": 1, "a": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": \"x\",\n  \"c\": \"string\",\n  \"b\": \"string\"\n}\n", encode(t, out))
}

func TestEngine_Complete_MutatesMappingInPlace(t *testing.T) {
	schema := mustSchema(t, `{"required": ["a"], "properties": {"a": {"type": "boolean"}}}`)
	doc := mustDoc(t, `{}`)

	out, err := New(Options{}, nil).Complete(schema, doc)
	require.NoError(t, err)
	assert.Same(t, doc, out)
}

func TestEngine_Complete_PlainMaps(t *testing.T) {
	schema := mustSchema(t, `{
		"required": ["env"],
		"properties": {
			"env": {"additionalProperties": {"required": ["value"], "properties": {"value": {"type": "string"}}}}
		}
	}`)
	doc := map[string]any{
		"env": map[string]any{
			"B": map[string]any{},
			"A": map[string]any{"value": "set"},
		},
	}

	out, err := New(Options{}, nil).Complete(schema, doc)
	require.NoError(t, err)

	want := map[string]any{
		"env": map[string]any{
			"B": map[string]any{"value": "string"},
			"A": map[string]any{"value": "set"},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Complete() mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_OpenMap(t *testing.T) {
	schema := mustSchema(t, `{"additionalProperties": {"type": "string"}}`)

	tests := []struct {
		name    string
		opts    Options
		doc     string // empty means absent
		want    string
		wantAdd int
	}{
		{"sample mode, absent", Options{AddSample: true}, "", `{"Sample": "string"}`, 2},
		{"no sample mode, absent", Options{}, "", `{}`, 1},
		{"sample mode, existing entries win", Options{AddSample: true}, `{"k": "v"}`, `{"k": "v"}`, 0},
		{"sample mode, present but empty", Options{AddSample: true}, `{}`, `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := New(tt.opts, nil)
			var doc any
			present := tt.doc != ""
			if present {
				doc = mustDoc(t, tt.doc)
			}
			out, stats, err := eng.CompleteWithStats(schema, doc, present)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, encode(t, out))
			assert.Equal(t, tt.wantAdd, stats.Added)
		})
	}
}

func TestEngine_OpenMap_CompletesNestedEntries(t *testing.T) {
	schema := mustSchema(t, `{
		"additionalProperties": {
			"required": ["port", "tls"],
			"properties": {"port": {"type": "integer"}, "tls": {"type": "boolean"}}
		}
	}`)

	out, err := New(Options{}, nil).Complete(schema, mustDoc(t, `{"web": {"port": 80}, "db": {}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"web": {"port": 80, "tls": false}, "db": {"port": null, "tls": false}}`, encode(t, out))
}

func TestEngine_Items(t *testing.T) {
	schema := mustSchema(t, `{"items": {"type": "boolean"}}`)

	t.Run("item mode, absent", func(t *testing.T) {
		out, err := New(Options{AddItem: true}, nil).Generate(schema)
		require.NoError(t, err)
		assert.Equal(t, []any{false}, out)
	})

	t.Run("item mode off, absent", func(t *testing.T) {
		out, err := New(Options{}, nil).Generate(schema)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("item mode, existing array untouched", func(t *testing.T) {
		out, err := New(Options{AddItem: true}, nil).Complete(schema, []any{})
		require.NoError(t, err)
		assert.Equal(t, []any{}, out)
	})

	t.Run("item mode, nested objects", func(t *testing.T) {
		nested := mustSchema(t, `{
			"required": ["hosts"],
			"properties": {
				"hosts": {"items": {"required": ["name"], "properties": {"name": {"type": "string"}}}}
			}
		}`)
		out, err := New(Options{AddItem: true}, nil).Generate(nested)
		require.NoError(t, err)
		assert.JSONEq(t, `{"hosts": [{"name": "string"}]}`, encode(t, out))
	})
}

func TestEngine_NullLeafKeptNullContainerFilled(t *testing.T) {
	schema := mustSchema(t, `{
		"required": ["owner", "name", "tags", "hosts"],
		"properties": {
			"owner": {"required": ["email"], "properties": {"email": {"type": "string"}}},
			"name": {"type": "string"},
			"tags": {"additionalProperties": {"type": "boolean"}},
			"hosts": {"items": {"type": "string"}}
		}
	}`)

	out, stats, err := New(Options{AddItem: true}, nil).CompleteWithStats(schema,
		mustDoc(t, `{"owner": null, "name": null, "tags": null, "hosts": null}`), true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner": {"email": "string"}, "name": null, "tags": {}, "hosts": ["string"]}`, encode(t, out))
	assert.Equal(t, 5, stats.Added)

	again, err := New(Options{AddItem: true}, nil).Complete(schema, out)
	require.NoError(t, err)
	assert.Equal(t, encode(t, out), encode(t, again))
}

func TestEngine_NullRoot(t *testing.T) {
	schema := mustSchema(t, `{
		"required": ["name", "tags"],
		"properties": {
			"name": {"type": "string"},
			"tags": {"additionalProperties": {"type": "boolean"}}
		}
	}`)

	out, err := New(Options{}, nil).Complete(schema, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "string", "tags": {}}`, encode(t, out))

	leaf, err := New(Options{}, nil).Complete(&Schema{Types: []string{"string"}}, nil)
	require.NoError(t, err)
	assert.Nil(t, leaf)
}

func TestEngine_YAMLEmptyValueUnderOpenMap(t *testing.T) {
	schema := mustSchema(t, `{
		"required": ["name", "tags"],
		"properties": {
			"name": {"type": "string"},
			"tags": {"additionalProperties": {"type": "boolean"}}
		}
	}`)

	doc, present, err := document.Decode([]byte("name: X\ntags:\n"), document.YAML)
	require.NoError(t, err)
	require.True(t, present)

	out, err := New(Options{}, nil).Complete(schema, doc)
	require.NoError(t, err)
	text, err := document.Encode(out, document.YAML)
	require.NoError(t, err)
	assert.Equal(t, "name: X\ntags: {}\n", string(text))

	doc, _, err = document.Decode([]byte("name: X\ntags:\n"), document.YAML)
	require.NoError(t, err)
	out, err = New(Options{AddSample: true}, nil).Complete(schema, doc)
	require.NoError(t, err)
	text, err = document.Encode(out, document.YAML)
	require.NoError(t, err)
	assert.Equal(t, "name: X\ntags:\n  Sample: false\n", string(text))
}

func TestEngine_TypeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		opts     Options
		doc      string
		wantPath string
		wantWant string
		wantGot  string
	}{
		{
			name:     "scalar where object required",
			schema:   `{"required": ["a"], "properties": {"a": {"required": ["b"], "properties": {"b": {"type": "string"}}}}}`,
			doc:      `{"a": "oops"}`,
			wantPath: "/a",
			wantWant: "mapping",
			wantGot:  "string",
		},
		{
			name:     "sequence where open map expected",
			schema:   `{"additionalProperties": {"type": "string"}}`,
			doc:      `[1]`,
			wantPath: "",
			wantWant: "mapping",
			wantGot:  "sequence",
		},
		{
			name:     "mapping where array expected",
			schema:   `{"required": ["list"], "properties": {"list": {"items": {"type": "string"}}}}`,
			opts:     Options{AddItem: true},
			doc:      `{"list": {"x": 1}}`,
			wantPath: "/list",
			wantWant: "sequence",
			wantGot:  "mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts, nil).Complete(mustSchema(t, tt.schema), mustDoc(t, tt.doc))
			require.Error(t, err)

			var mismatch *TypeMismatchError
			require.True(t, errors.As(err, &mismatch), "expected TypeMismatchError, got %T", err)
			assert.Equal(t, tt.wantPath, mismatch.Path)
			assert.Equal(t, tt.wantWant, mismatch.Want)
			assert.Equal(t, tt.wantGot, mismatch.Got)
		})
	}
}

func TestEngine_MissingPropertyDefinition(t *testing.T) {
	schema := mustSchema(t, `{
		"required": ["deployment"],
		"properties": {"deployment": {"required": ["replicas"], "properties": {}}}
	}`)

	_, err := New(Options{}, nil).Generate(schema)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "/deployment/replicas", schemaErr.Path)
	assert.Contains(t, err.Error(), "replicas")
}

func TestEngine_NilSchema(t *testing.T) {
	_, err := New(Options{}, nil).Complete(nil, map[string]any{})
	assert.ErrorIs(t, err, ErrNilSchema)
}

func TestEngine_PathEscaping(t *testing.T) {
	schema := mustSchema(t, `{
		"additionalProperties": {"required": ["x"], "properties": {"x": {"required": ["y"], "properties": {"y": {}}}}}
	}`)

	_, err := New(Options{}, nil).Complete(schema, mustDoc(t, `{"a/b~c": {"x": 5}}`))
	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "/a~1b~0c/x", mismatch.Path)
}

func TestEngine_Idempotent(t *testing.T) {
	docs := []string{``, `{}`, `{"name": "svc", "tags": {"a": true}}`, `{"owner": {"nickname": "n"}}`}
	optionSets := []Options{{}, {AddSample: true}, {AddItem: true}, {AddSample: true, AddItem: true}}
	schema := mustSchema(t, configSchema)

	for _, opts := range optionSets {
		for _, src := range docs {
			eng := New(opts, nil)

			var once any
			var err error
			if src == "" {
				once, err = eng.Generate(schema)
			} else {
				once, err = eng.Complete(schema, mustDoc(t, src))
			}
			require.NoError(t, err)
			first := encode(t, once)

			twice, stats, err := eng.CompleteWithStats(schema, once, true)
			require.NoError(t, err)
			assert.Equal(t, first, encode(t, twice), "opts=%+v doc=%q", opts, src)
			assert.Zero(t, stats.Added)
		}
	}
}

func TestEngine_RequiredCoverage(t *testing.T) {
	schema := mustSchema(t, configSchema)
	out, err := New(Options{}, nil).Complete(schema, mustDoc(t, `{"unrelated": true}`))
	require.NoError(t, err)

	m, ok := asMapping(out)
	require.True(t, ok)
	for _, name := range schema.Required {
		_, exists := m.get(name)
		assert.True(t, exists, "required field %q missing", name)
	}
}

func TestEngine_Stats(t *testing.T) {
	schema := mustSchema(t, `{
		"required": ["a", "b"],
		"properties": {"a": {"type": "string"}, "b": {"required": ["c"], "properties": {"c": {"type": "boolean"}}}}
	}`)

	_, stats, err := New(Options{}, nil).CompleteWithStats(schema, mustDoc(t, `{"a": "set"}`), true)
	require.NoError(t, err)
	// b and b/c
	assert.Equal(t, 2, stats.Added)
}
