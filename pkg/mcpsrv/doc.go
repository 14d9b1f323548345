// Package mcpsrv embeds the schemafill MCP server in other programs.
//
// A server built with NewServer offers three tools: schemafill_complete,
// schemafill_generate and schemafill_infer. It also serves parsed schemas
// at schemafill://schema/{key} and has a fill_config prompt. Configuration
// comes from SCHEMAFILL_* and LOG_* environment variables unless WithConfig
// supplies it:
//
//	srv, err := mcpsrv.NewServer(mcpsrv.WithLogFile("/var/log/schemafill.log"))
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//	return srv.Run(ctx)
//
// WithDepsTool registers extra tools that share the server's schema cache
// and jq engine:
//
//	type requiredInput struct {
//	    Schema string `json:"schema"`
//	}
//	type requiredOutput struct {
//	    Required []string `json:"required,omitempty"`
//	}
//
//	func required(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, requiredInput) (*mcp.CallToolResult, requiredOutput, error) {
//	    return func(ctx context.Context, req *mcp.CallToolRequest, in requiredInput) (*mcp.CallToolResult, requiredOutput, error) {
//	        entry, err := d.Schemas.GetOrParse([]byte(in.Schema), document.JSON)
//	        if err != nil {
//	            return nil, requiredOutput{}, err
//	        }
//	        return nil, requiredOutput{Required: entry.Schema.Required}, nil
//	    }
//	}
//
//	srv, err := mcpsrv.NewServer(
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "schema_required"}, required),
//	)
//
// Output types go through the same zero-value check as AddTool, so slice
// fields need omitempty.
package mcpsrv
