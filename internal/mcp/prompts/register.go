package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "fill_config",
		Description: "Workflow for completing a configuration file from its JSON Schema: complete, verify, then replace placeholders with real values.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "purpose",
				Description: "What the configuration is for (e.g., 'staging deployment of the billing service')",
				Required:    false,
			},
			{
				Name:        "format",
				Description: "Preferred document format: json or yaml",
				Required:    false,
			},
		},
	}, HandleFillConfig(cfg))
}
