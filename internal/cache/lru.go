// Package cache provides caching utilities for parsed schemas.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/usestring/schemafill/pkg/completion"
	"github.com/usestring/schemafill/pkg/document"
	"github.com/usestring/schemafill/pkg/verify"
)

// Entry is a parsed schema together with the decoded document it came from.
// Entries are shared between goroutines and must be treated as read-only.
type Entry struct {
	Raw    any
	Schema *completion.Schema

	validatorOnce sync.Once
	validator     *verify.Validator
	validatorErr  error
}

// Validator compiles the raw schema for verification on first use.
func (e *Entry) Validator() (*verify.Validator, error) {
	e.validatorOnce.Do(func() {
		e.validator, e.validatorErr = verify.New(e.Raw)
	})
	return e.validator, e.validatorErr
}

// SchemaCache provides thread-safe LRU caching of parsed schemas keyed by
// the SHA-256 of their source bytes.
type SchemaCache struct {
	cache *lru.Cache[string, *Entry]
}

// NewSchemaCache creates a new LRU cache with the specified maximum number of items.
func NewSchemaCache(maxItems int) (*SchemaCache, error) {
	c, err := lru.New[string, *Entry](maxItems)
	if err != nil {
		return nil, err
	}
	return &SchemaCache{cache: c}, nil
}

// Key returns the cache key for schema source bytes.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get retrieves an entry from the cache by its key.
// Returns the entry and true if found, nil and false otherwise.
func (c *SchemaCache) Get(key string) (*Entry, bool) {
	return c.cache.Get(key)
}

// Put adds or updates an entry in the cache.
func (c *SchemaCache) Put(key string, entry *Entry) {
	c.cache.Add(key, entry)
}

// Len returns the current number of items in the cache.
func (c *SchemaCache) Len() int {
	return c.cache.Len()
}

// GetOrParse returns the cached entry for data, decoding and parsing it on a
// miss. Parse failures are not cached.
func (c *SchemaCache) GetOrParse(data []byte, format document.Format) (*Entry, error) {
	key := Key(data)
	if entry, ok := c.Get(key); ok {
		return entry, nil
	}

	raw, present, err := document.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	if !present {
		return nil, fmt.Errorf("decoding schema: empty document")
	}
	s, err := completion.ParseSchema(raw)
	if err != nil {
		return nil, err
	}

	entry := &Entry{Raw: raw, Schema: s}
	c.Put(key, entry)
	return entry, nil
}
