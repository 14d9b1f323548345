// Package completion fills in the parts of a document that a JSON Schema
// mandates but the document lacks.
//
// The engine walks a parsed [Schema] alongside a data tree and adds every
// missing required field, recursing through nested objects, open-ended maps
// (additionalProperties) and, when enabled, arrays (items). Missing leaves are
// filled with deterministic placeholders chosen by [Synthesize]: the first
// enum value, a fixed date/date-time/uri literal, "string", false, or null.
//
// Completion never removes or overwrites a value that is already present, so
// completing a completed document is a no-op.
//
// # Basic Usage
//
//	schema, err := completion.ParseSchema(schemaTree)
//	if err != nil {
//	    return err
//	}
//	eng := completion.New(completion.Options{AddSample: true}, nil)
//	doc, err = eng.Complete(schema, doc)
//
// Data trees are the generic values produced by package document: mappings
// are *orderedmap.OrderedMap[string, any] (plain map[string]any is accepted
// too), sequences are []any, and scalars are strings, numbers, bools or nil.
//
// Only required, properties, additionalProperties, items, enum, type and
// format are interpreted. Composition keywords and $ref are ignored.
package completion
