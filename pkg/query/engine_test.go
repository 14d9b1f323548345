package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/usestring/schemafill/pkg/document"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	v, _, err := document.Decode([]byte(src), document.JSON)
	require.NoError(t, err)
	return v
}

func TestEngine_Select_Scalar(t *testing.T) {
	engine := NewEngine()

	got, err := engine.Select(decode(t, `{"name": "John", "age": 30}`), ".name")
	require.NoError(t, err)
	assert.Equal(t, "John", got)

	got, err = engine.Select(decode(t, `{"name": "John", "age": 30}`), ".age")
	require.NoError(t, err)
	assert.Equal(t, 30, got)
}

func TestEngine_Select_Subtree(t *testing.T) {
	engine := NewEngine()

	got, err := engine.Select(decode(t, `{"server": {"z": 1, "a": {"b": true}}}`), ".server")
	require.NoError(t, err)

	m, ok := got.(*orderedmap.OrderedMap[string, any])
	require.True(t, ok, "expected ordered map, got %T", got)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "a", m.Oldest().Key)

	out, err := document.Encode(got, document.JSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": true}, "z": 1}`, string(out))
}

func TestEngine_Select_MultipleResults(t *testing.T) {
	engine := NewEngine()

	got, err := engine.Select(decode(t, `{"items": [{"name": "a"}, {"name": "b"}]}`), ".items[].name")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got)
}

func TestEngine_Select_NoResults(t *testing.T) {
	engine := NewEngine()

	got, err := engine.Select(decode(t, `{"items": []}`), ".items[]")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEngine_Select_RuntimeError(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Select(decode(t, `{"items": null}`), ".items[]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "may not exist")
}

func TestEngine_Select_Halt(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Select(decode(t, `{}`), `"stop" | halt_error`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query halted")
}

func TestEngine_Select_InvalidExpression(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Select(decode(t, `{}`), ".name[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
}

func TestEngine_ValidateExpression(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		expr    string
		wantErr bool
	}{
		{".name", false},
		{".items[] | select(.x == 1)", false},
		{".name[", true},
		{"undefined_func(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := engine.ValidateExpression(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngine_Select_BigIntegers(t *testing.T) {
	engine := NewEngine()

	for _, tt := range []struct {
		f   document.Format
		src string
	}{
		{document.JSON, `{"id": 12345678901234567890}`},
		{document.YAML, "id: 12345678901234567890\n"},
	} {
		t.Run(string(tt.f), func(t *testing.T) {
			v, _, err := document.Decode([]byte(tt.src), tt.f)
			require.NoError(t, err)

			got, err := engine.Select(v, ".id + 1")
			require.NoError(t, err)
			require.IsType(t, document.BigInt{}, got)
			assert.Equal(t, "12345678901234567891", got.(document.BigInt).String())

			got, err = engine.Select(v, ".id > 1")
			require.NoError(t, err)
			assert.Equal(t, true, got)
		})
	}
}
