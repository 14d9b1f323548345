package tools

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemafill/internal/cache"
	"github.com/usestring/schemafill/pkg/completion"
	"github.com/usestring/schemafill/pkg/document"
)

// CompleteInput is the input for schemafill_complete.
type CompleteInput struct {
	Schema    string `json:"schema" jsonschema:"JSON Schema as JSON or YAML text"`
	Document  string `json:"document,omitempty" jsonschema:"Document to complete as JSON or YAML text (omit to start from nothing)"`
	Format    string `json:"format,omitempty" jsonschema:"Document format: json or yaml (default: detected from the document)"`
	AddSample *bool  `json:"add_sample,omitempty" jsonschema:"Give newly created open-ended maps a Sample entry (default: server setting)"`
	AddItem   *bool  `json:"add_item,omitempty" jsonschema:"Give newly created arrays one placeholder item (default: server setting)"`
	Select    string `json:"select,omitempty" jsonschema:"jq expression selecting the part of the completed document to return"`
	Verify    bool   `json:"verify,omitempty" jsonschema:"Validate the completed document against the schema"`
}

// GenerateInput is the input for schemafill_generate.
type GenerateInput struct {
	Schema    string `json:"schema" jsonschema:"JSON Schema as JSON or YAML text"`
	Format    string `json:"format,omitempty" jsonschema:"Output format: json or yaml (default: the schema's format)"`
	AddSample *bool  `json:"add_sample,omitempty" jsonschema:"Give open-ended maps a Sample entry (default: server setting)"`
	AddItem   *bool  `json:"add_item,omitempty" jsonschema:"Give arrays one placeholder item (default: server setting)"`
	Select    string `json:"select,omitempty" jsonschema:"jq expression selecting the part of the generated document to return"`
	Verify    bool   `json:"verify,omitempty" jsonschema:"Validate the generated document against the schema"`
}

// CompleteOutput is the output for schemafill_complete and schemafill_generate.
type CompleteOutput struct {
	Document  string   `json:"document"`
	Format    string   `json:"format"`
	Added     int      `json:"added"`
	SchemaKey string   `json:"schema_key" jsonschema:"Key of the cached schema, readable as schemafill://schema/{key}"`
	Valid     *bool    `json:"valid,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ToolComplete completes a document against a schema.
func ToolComplete(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CompleteInput) (*sdkmcp.CallToolResult, CompleteOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CompleteInput) (*sdkmcp.CallToolResult, CompleteOutput, error) {
		out, err := d.complete(ctx, input)
		if err != nil {
			return nil, CompleteOutput{}, err
		}
		return nil, out, nil
	}
}

// ToolGenerate generates a skeleton document from a schema.
func ToolGenerate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GenerateInput) (*sdkmcp.CallToolResult, CompleteOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GenerateInput) (*sdkmcp.CallToolResult, CompleteOutput, error) {
		out, err := d.complete(ctx, CompleteInput{
			Schema:    input.Schema,
			Format:    input.Format,
			AddSample: input.AddSample,
			AddItem:   input.AddItem,
			Select:    input.Select,
			Verify:    input.Verify,
		})
		if err != nil {
			return nil, CompleteOutput{}, err
		}
		return nil, out, nil
	}
}

func (d *Deps) options(input CompleteInput) completion.Options {
	opts := completion.Options{
		AddSample: d.Config.AddSample,
		AddItem:   d.Config.AddItem,
	}
	if input.AddSample != nil {
		opts.AddSample = *input.AddSample
	}
	if input.AddItem != nil {
		opts.AddItem = *input.AddItem
	}
	return opts
}

func (d *Deps) complete(ctx context.Context, input CompleteInput) (CompleteOutput, error) {
	if input.Schema == "" {
		return CompleteOutput{}, ErrInvalidInput("schema is required")
	}
	if input.Select != "" {
		if err := d.Query.ValidateExpression(input.Select); err != nil {
			return CompleteOutput{}, WrapCompletionError("invalid select expression", err)
		}
	}

	schemaData := []byte(input.Schema)
	entry, err := d.Schemas.GetOrParse(schemaData, document.DetectFormat("", schemaData))
	if err != nil {
		return CompleteOutput{}, WrapCompletionError("invalid schema", err)
	}

	docData := []byte(input.Document)
	format, err := resolveFormat(input.Format, docData, schemaData)
	if err != nil {
		return CompleteOutput{}, ErrInvalidInput(err.Error())
	}

	doc, present, err := document.Decode(docData, format)
	if err != nil {
		return CompleteOutput{}, WrapCompletionError("invalid document", err)
	}

	logger := slog.Default().With("tool", "schemafill_complete")
	out, stats, err := completion.New(d.options(input), logger).CompleteWithStats(entry.Schema, doc, present)
	if err != nil {
		return CompleteOutput{}, WrapCompletionError("completion failed", err)
	}

	result := CompleteOutput{
		Format:    string(format),
		Added:     stats.Added,
		SchemaKey: cache.Key(schemaData),
	}

	if input.Verify {
		v, err := entry.Validator()
		if err != nil {
			return CompleteOutput{}, WrapCompletionError("schema cannot be used for verification", err)
		}
		res := v.Validate(out)
		result.Valid = &res.Valid
		result.Errors = res.Errors
	}

	if input.Select != "" {
		out, err = d.Query.Select(out, input.Select)
		if err != nil {
			return CompleteOutput{}, WrapCompletionError("select failed", err)
		}
	}

	encoded, err := document.Encode(out, format)
	if err != nil {
		return CompleteOutput{}, WrapCompletionError("encoding document", err)
	}
	result.Document = string(encoded)

	slog.LogAttrs(ctx, slog.LevelDebug, "document completed",
		slog.String("format", result.Format),
		slog.Int("added", result.Added),
	)
	return result, nil
}

// resolveFormat picks the explicit format, else the document's detected
// format, else the schema's.
func resolveFormat(explicit string, doc, schema []byte) (document.Format, error) {
	if explicit != "" {
		return document.ParseFormat(explicit)
	}
	if len(doc) > 0 {
		return document.DetectFormat("", doc), nil
	}
	return document.DetectFormat("", schema), nil
}
