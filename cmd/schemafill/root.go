package main

import (
	"fmt"
	"log/slog"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/usestring/schemafill/internal/config"
	"github.com/usestring/schemafill/internal/logging"
)

// app holds state shared by all commands once the root pre-run has loaded it.
type app struct {
	lookuper envconfig.Lookuper
	verbose  bool

	cfg        *config.Config
	logger     *slog.Logger
	logCleanup func() error
}

func newApp(l envconfig.Lookuper) *app {
	return &app{lookuper: l}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "schemafill",
		Short: "Complete JSON and YAML documents from their JSON Schema",
		Long: `schemafill adds the properties a JSON Schema requires to a document,
with placeholder values, and never changes values that are already there.

Configuration defaults come from SCHEMAFILL_* and LOG_* environment variables;
flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWith(cmd.Context(), a.lookuper)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.LogLevel = "debug"
			}

			logCfg := cfg.Logging()
			logCfg.Output = cmd.ErrOrStderr()
			logger, cleanup, err := logging.Setup(logCfg)
			if err != nil {
				return fmt.Errorf("setting up logging: %w", err)
			}

			a.cfg = cfg
			a.logger = logger
			a.logCleanup = cleanup
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCleanup != nil {
				return a.logCleanup()
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every visited schema node at debug level")

	root.AddCommand(newCompleteCmd(a))
	root.AddCommand(newInferCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}
