package tools

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemafill/internal/cache"
	"github.com/usestring/schemafill/pkg/document"
	"github.com/usestring/schemafill/pkg/infer"
)

// InferInput is the input for schemafill_infer.
type InferInput struct {
	Samples      []string `json:"samples" jsonschema:"Sample documents as JSON or YAML text"`
	Format       string   `json:"format,omitempty" jsonschema:"Schema format: json or yaml (default: json)"`
	MarkRequired *bool    `json:"mark_required,omitempty" jsonschema:"Mark properties present in every sample as required (default: true)"`
	Formats      *bool    `json:"formats,omitempty" jsonschema:"Detect date, date-time and uri strings (default: true)"`
	CloseObjects bool     `json:"close_objects,omitempty" jsonschema:"Set additionalProperties to false on every object"`
}

// InferOutput is the output for schemafill_infer.
type InferOutput struct {
	Schema      string `json:"schema"`
	Format      string `json:"format"`
	SampleCount int    `json:"sample_count"`
	AllMatch    bool   `json:"all_match" jsonschema:"True if every sample produced the same schema"`
	SchemaKey   string `json:"schema_key" jsonschema:"Key of the cached schema, readable as schemafill://schema/{key}"`
}

// ToolInfer derives a schema from sample documents.
func ToolInfer(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferInput) (*sdkmcp.CallToolResult, InferOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferInput) (*sdkmcp.CallToolResult, InferOutput, error) {
		if len(input.Samples) == 0 {
			return nil, InferOutput{}, ErrInvalidInput("at least one sample is required")
		}

		format := document.JSON
		if input.Format != "" {
			f, err := document.ParseFormat(input.Format)
			if err != nil {
				return nil, InferOutput{}, ErrInvalidInput(err.Error())
			}
			format = f
		}

		opts := infer.DefaultOptions()
		if input.MarkRequired != nil {
			opts.Required = *input.MarkRequired
		}
		if input.Formats != nil {
			opts.Formats = *input.Formats
		}
		if input.CloseObjects {
			closed := false
			opts.AdditionalProperties = &closed
		}

		samples := make([]any, 0, len(input.Samples))
		for i, text := range input.Samples {
			data := []byte(text)
			v, present, err := document.Decode(data, document.DetectFormat("", data))
			if err != nil {
				return nil, InferOutput{}, WrapCompletionError(fmt.Sprintf("invalid sample %d", i), err)
			}
			if !present {
				return nil, InferOutput{}, ErrInvalidInput(fmt.Sprintf("sample %d is empty", i))
			}
			samples = append(samples, v)
		}

		result, err := infer.Infer(opts, samples...)
		if err != nil {
			return nil, InferOutput{}, WrapCompletionError("inference failed", err)
		}
		tree, err := result.Document()
		if err != nil {
			return nil, InferOutput{}, WrapCompletionError("inference failed", err)
		}
		encoded, err := document.Encode(tree, format)
		if err != nil {
			return nil, InferOutput{}, WrapCompletionError("encoding schema", err)
		}

		// Cache it so schemafill_complete calls with the same text skip parsing.
		if _, err := d.Schemas.GetOrParse(encoded, format); err != nil {
			return nil, InferOutput{}, WrapCompletionError("inferred schema is unusable", err)
		}

		slog.LogAttrs(ctx, slog.LevelDebug, "schema inferred",
			slog.Int("samples", result.SampleCount),
			slog.Bool("all_match", result.AllMatch),
		)

		return nil, InferOutput{
			Schema:      string(encoded),
			Format:      string(format),
			SampleCount: result.SampleCount,
			AllMatch:    result.AllMatch,
			SchemaKey:   cache.Key(encoded),
		}, nil
	}
}
