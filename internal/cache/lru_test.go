package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/schemafill/pkg/completion"
	"github.com/usestring/schemafill/pkg/document"
)

const schemaSrc = `{"required": ["name"], "properties": {"name": {"type": "string"}}}`

func TestSchemaCache_GetOrParse(t *testing.T) {
	c, err := NewSchemaCache(4)
	require.NoError(t, err)

	first, err := c.GetOrParse([]byte(schemaSrc), document.JSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, first.Schema.Required)
	assert.Equal(t, 1, c.Len())

	second, err := c.GetOrParse([]byte(schemaSrc), document.JSON)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestSchemaCache_Errors(t *testing.T) {
	c, err := NewSchemaCache(4)
	require.NoError(t, err)

	_, err = c.GetOrParse([]byte(`{"required": 1}`), document.JSON)
	var schemaErr *completion.SchemaError
	assert.True(t, errors.As(err, &schemaErr))

	_, err = c.GetOrParse([]byte(`{`), document.JSON)
	assert.Error(t, err)

	_, err = c.GetOrParse([]byte("  "), document.YAML)
	assert.Error(t, err)

	assert.Equal(t, 0, c.Len())
}

func TestSchemaCache_Eviction(t *testing.T) {
	c, err := NewSchemaCache(1)
	require.NoError(t, err)

	_, err = c.GetOrParse([]byte(`{"required": []}`), document.JSON)
	require.NoError(t, err)
	_, err = c.GetOrParse([]byte(schemaSrc), document.JSON)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(Key([]byte(`{"required": []}`)))
	assert.False(t, ok)
}

func TestNewSchemaCache_InvalidSize(t *testing.T) {
	_, err := NewSchemaCache(0)
	assert.Error(t, err)
}

func TestEntry_Validator(t *testing.T) {
	c, err := NewSchemaCache(4)
	require.NoError(t, err)

	entry, err := c.GetOrParse([]byte("required: [name]\nproperties:\n  name: {type: string}\n"), document.YAML)
	require.NoError(t, err)

	v1, err := entry.Validator()
	require.NoError(t, err)
	v2, err := entry.Validator()
	require.NoError(t, err)
	assert.Same(t, v1, v2)

	doc, _, err := document.Decode([]byte(`{"name": 1}`), document.JSON)
	require.NoError(t, err)
	assert.False(t, v1.Validate(doc).Valid)
}
