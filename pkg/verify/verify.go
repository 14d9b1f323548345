// Package verify checks completed documents against their JSON Schema.
//
// Completion fills in structure but does not validate input, so a completed
// document can still violate the schema (a wrong-typed leaf the user wrote,
// a required number left null). Verification is the optional step that
// reports those.
package verify

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/schemafill/pkg/document"
	"github.com/usestring/schemafill/pkg/types"
)

const resourceURL = "schema.json"

// Validator validates document trees against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// New compiles a decoded schema document. Ordered mappings are accepted.
func New(schemaDoc any) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	// Add the schema as a resource (doc must be a plain json value, not io.Reader)
	if err := compiler.AddResource(resourceURL, validatorValue(schemaDoc)); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return &Validator{schema: compiled}, nil
}

// Validate validates a document tree against the schema.
func (v *Validator) Validate(doc any) *types.ValidationResult {
	if v == nil || v.schema == nil {
		return &types.ValidationResult{
			Valid:  false,
			Errors: []string{"schema not compiled"},
		}
	}

	err := v.schema.Validate(validatorValue(doc))
	if err == nil {
		return &types.ValidationResult{Valid: true}
	}

	return &types.ValidationResult{
		Valid:  false,
		Errors: extractValidationErrors(err),
	}
}

// validatorValue converts a tree to plain values, with big integers as
// json.Number since the validator reads numbers as json.Number or Go numerics.
func validatorValue(v any) any {
	return bigToNumber(document.Plain(v))
}

func bigToNumber(v any) any {
	switch t := v.(type) {
	case *big.Int:
		return json.Number(t.String())
	case map[string]any:
		for k, val := range t {
			t[k] = bigToNumber(val)
		}
	case []any:
		for i, val := range t {
			t[i] = bigToNumber(val)
		}
	}
	return v
}

func extractValidationErrors(err error) []string {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractDetailedErrors(validationErr)
	}
	return []string{err.Error()}
}

var printer = message.NewPrinter(language.English)

// extractDetailedErrors flattens the cause tree into "path: message" lines,
// deduplicated per path and sorted by path.
func extractDetailedErrors(err *jsonschema.ValidationError) []string {
	errorsByPath := make(map[string][]string)
	collectErrors(err, errorsByPath)

	paths := make([]string, 0, len(errorsByPath))
	for path := range errorsByPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		seen := make(map[string]bool)
		for _, msg := range errorsByPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	return result
}

// collectErrors recursively collects leaf errors (those without causes).
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		// $ref wrappers carry no information of their own
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
