package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemafill/pkg/completion"
)

// HandleFillConfig implements the configuration completion workflow.
func HandleFillConfig(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		purpose := ""
		format := ""
		if args != nil {
			purpose = args["purpose"]
			format = args["format"]
		}

		var sb strings.Builder

		sb.WriteString("# Fill a Configuration File from its Schema\n\n")
		if purpose != "" {
			fmt.Fprintf(&sb, "The configuration is for: %s\n\n", purpose)
		}

		sb.WriteString("## Workflow\n\n")
		sb.WriteString("1. Call `schemafill_complete` with the schema and the current document ")
		sb.WriteString("(or `schemafill_generate` when there is no document yet).")
		if format != "" {
			fmt.Fprintf(&sb, " Pass `format: %q`.", format)
		}
		sb.WriteString("\n")
		sb.WriteString("2. Call again with `verify: true`. Errors point at leaves that still need real values.\n")
		sb.WriteString("3. Replace placeholders with real values, then run step 2 until `valid` is true.\n")
		sb.WriteString("4. Use `select` with a jq expression (e.g. `.database`) to review one section at a time.\n\n")

		sb.WriteString("## Placeholders to Replace\n\n")
		sb.WriteString("| Schema | Placeholder |\n")
		sb.WriteString("|--------|-------------|\n")
		sb.WriteString("| `enum` | first listed value |\n")
		fmt.Fprintf(&sb, "| `format: date` | `%s` |\n", completion.PlaceholderDate)
		fmt.Fprintf(&sb, "| `format: date-time` | `%s` |\n", completion.PlaceholderDateTime)
		fmt.Fprintf(&sb, "| `format: uri` | `%s` |\n", completion.PlaceholderURI)
		fmt.Fprintf(&sb, "| `type: string` | `%q` |\n", completion.PlaceholderString)
		sb.WriteString("| `type: boolean` | `false` |\n")
		sb.WriteString("| anything else | `null` |\n\n")

		sb.WriteString("## Options\n\n")
		fmt.Fprintf(&sb, "- `add_sample` (server default: %t): open-ended maps get a `%s` entry showing the shape of their values. Rename or delete it.\n", cfg.AddSample, completion.SampleKey)
		fmt.Fprintf(&sb, "- `add_item` (server default: %t): new arrays get one placeholder item.\n\n", cfg.AddItem)

		sb.WriteString("## Tips\n\n")
		sb.WriteString("- Completion never changes values you wrote, so it is safe to call repeatedly\n")
		sb.WriteString("- A `TYPE_MISMATCH` error means the document has a scalar or list where the schema expects a map (or the reverse)\n")
		sb.WriteString("- A `SCHEMA_ERROR` means the schema itself is malformed, e.g. a required property without a definition\n")
		sb.WriteString("- No schema yet? Call `schemafill_infer` with one or more finished configurations and use the result\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for completing a configuration file from its schema",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
