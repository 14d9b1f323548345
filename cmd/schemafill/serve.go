package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/usestring/schemafill/pkg/mcpsrv"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Run a Model Context Protocol server on standard input and output, exposing
the schemafill_complete, schemafill_generate and schemafill_infer tools. Logs
go to standard error or LOG_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcpsrv.NewServer(
				mcpsrv.WithConfig(a.cfg),
				mcpsrv.WithoutLoggingSetup(),
			)
			if err != nil {
				return err
			}
			defer server.Close()

			a.logger.Info("starting schemafill MCP server on stdio")
			if err := server.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
}
