package mcpsrv

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemafill/internal/config"
	"github.com/usestring/schemafill/internal/logging"
	"github.com/usestring/schemafill/internal/mcp"
	"github.com/usestring/schemafill/internal/mcp/tools"
)

// Server is the schemafill MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with the builtin schemafill tools.
// Configuration is read from the environment unless WithConfig is given.
func NewServer(opts ...Option) (*Server, error) {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.config == nil {
		loaded, err := config.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.config = loaded
	}

	logCleanup := func() error { return nil }
	if !cfg.skipLogSetup {
		logCfg := cfg.config.Logging()
		if cfg.logLevel != "" {
			logCfg.Level = cfg.logLevel
		}
		if cfg.logFile != "" {
			logCfg.FilePath = cfg.logFile
		}
		var err error
		_, logCleanup, err = logging.Setup(logCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to setup logging: %w", err)
		}
	}

	toolDeps, err := tools.NewDeps(cfg.config)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create schema cache: %w", err)
	}

	// Public deps share the same values under the public type
	deps := &Deps{
		Config:  toolDeps.Config,
		Schemas: toolDeps.Schemas,
		Query:   toolDeps.Query,
	}

	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// Run starts the MCP server with stdio transport.
// The server runs until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// RunTransport runs the server on a caller-supplied transport.
func (s *Server) RunTransport(ctx context.Context, t sdkmcp.Transport) error {
	return s.internal.RunTransport(ctx, t)
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}
