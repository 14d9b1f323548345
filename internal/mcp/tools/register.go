package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MIME type constant.
const MimeJSON = "application/json"

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "schemafill_complete",
		Description: "Complete a JSON or YAML document against a JSON Schema. Missing required properties are added with placeholder values (first enum value, a placeholder for date, date-time and uri formats, \"string\" for strings, false for booleans, null otherwise); existing values are never changed. Returns the completed document text, its format, and how many nodes were added. Set add_sample to give empty open-ended maps a \"Sample\" entry, add_item to give new arrays one item, select to return only a jq-selected part, and verify to validate the completed document.",
	}, ToolComplete(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "schemafill_generate",
		Description: "Generate a skeleton document from a JSON Schema, containing every required property with a placeholder value. Same options and output as schemafill_complete; the format defaults to the schema's own format.",
	}, ToolGenerate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "schemafill_infer",
		Description: "Infer a JSON Schema from one or more sample documents (JSON or YAML text). Properties present in every sample become required, strings that look like dates, date-times or URIs get a format, and property order follows the samples. The inferred schema is cached and can be passed straight to schemafill_complete.",
	}, ToolInfer(d))
}
