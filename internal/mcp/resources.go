package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemafill/internal/mcp/tools"
	"github.com/usestring/schemafill/pkg/document"
)

// Resource URI scheme: schemafill://
// Supported URIs:
//   schemafill://schema/{key}

const schemaURIPrefix = "schemafill://schema/"

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: schemaURIPrefix + "{key}",
		Name:        "Cached Schema",
		Description: "A schema previously passed to schemafill_complete or schemafill_generate, as JSON. The key is the schema_key from the tool output. Schemas are evicted least-recently-used first.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceSchema)
}

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	key, ok := strings.CutPrefix(req.Params.URI, schemaURIPrefix)
	if !ok || key == "" || strings.Contains(key, "/") {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	entry, ok := s.deps.Schemas.Get(key)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := document.Encode(entry.Raw, document.JSON)
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
