// Package document decodes and encodes JSON and YAML documents as ordered
// generic trees.
//
// Mappings decode to *orderedmap.OrderedMap[string, any] so that key order
// survives a decode/encode round trip. Sequences are []any, integers are int
// (BigInt when they do not fit), and other scalars are float64, string,
// bool or nil.
package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a serialization format for documents.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown document format: %q", s)
	}
}

// DetectFormat picks a format from the file extension, falling back to the
// content: documents starting with '{' or '[' are JSON, anything else YAML.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return JSON
	}
	return YAML
}
