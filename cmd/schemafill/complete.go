package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/schemafill/internal/cache"
	"github.com/usestring/schemafill/internal/runner"
	"github.com/usestring/schemafill/pkg/completion"
	"github.com/usestring/schemafill/pkg/document"
)

var errVerificationFailed = errors.New("completed document does not validate against the schema")

type completeOptions struct {
	schema    string
	addSample bool
	addItem   bool
	selectExp string
	verify    bool
	create    bool
	output    string
	inPlace   bool
	format    string
	workers   int
}

func newCompleteCmd(a *app) *cobra.Command {
	var o completeOptions

	cmd := &cobra.Command{
		Use:   "complete --schema SCHEMA [TARGET...]",
		Short: "Add missing required properties to documents",
		Long: `Complete each TARGET document against SCHEMA. With no TARGET a document is
generated from scratch. Use "-" as TARGET to read standard input.

A single result goes to standard output unless -o is given. Several targets
must be completed --in-place.`,
		Example: `  schemafill complete --schema app.schema.json config.yaml
  schemafill complete --schema app.schema.json --add-sample -o skeleton.yaml
  schemafill complete --schema app.schema.json --in-place --create envs/*.yaml
  cat config.json | schemafill complete --schema app.schema.json --verify -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, a, &o, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.schema, "schema", "s", "", "JSON Schema file (JSON or YAML)")
	f.BoolVar(&o.addSample, "add-sample", false, "give new open-ended maps a \""+completion.SampleKey+"\" entry (default from SCHEMAFILL_ADD_SAMPLE)")
	f.BoolVar(&o.addItem, "add-item", false, "give new arrays one placeholder item (default from SCHEMAFILL_ADD_ITEM)")
	f.StringVar(&o.selectExp, "select", "", "jq expression selecting the part of the result to write")
	f.BoolVar(&o.verify, "verify", false, "validate completed documents and exit with status 2 if any fail")
	f.BoolVar(&o.create, "create", false, "treat missing TARGET files as empty documents")
	f.StringVarP(&o.output, "output", "o", "", "write the result to this file")
	f.BoolVarP(&o.inPlace, "in-place", "i", false, "overwrite each TARGET with its completed document")
	f.StringVar(&o.format, "format", "", "document format: json or yaml (default: detected)")
	f.IntVar(&o.workers, "workers", 0, "targets completed concurrently (default from SCHEMAFILL_WORKERS)")
	_ = cmd.MarkFlagRequired("schema")
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")

	return cmd
}

func runComplete(cmd *cobra.Command, a *app, o *completeOptions, targets []string) error {
	cfg := *a.cfg
	flags := cmd.Flags()
	if flags.Changed("add-sample") {
		cfg.AddSample = o.addSample
	}
	if flags.Changed("add-item") {
		cfg.AddItem = o.addItem
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	job := runner.Job{
		SchemaPath: o.schema,
		Targets:    targets,
		Options:    completion.Options{AddSample: cfg.AddSample, AddItem: cfg.AddItem},
		Select:     o.selectExp,
		Verify:     o.verify,
		Create:     o.create,
		Output:     o.output,
		InPlace:    o.inPlace,
	}
	if o.format != "" {
		format, err := document.ParseFormat(o.format)
		if err != nil {
			return err
		}
		job.Format = format
	}

	schemas, err := cache.NewSchemaCache(cfg.SchemaCacheSize)
	if err != nil {
		return err
	}
	r := runner.New(&cfg, schemas, a.logger, runner.WithStdio(cmd.InOrStdin(), cmd.OutOrStdout()))

	report, err := r.Run(cmd.Context(), job)
	if err != nil {
		return err
	}

	added := 0
	for _, res := range report.Results {
		added += res.Added
		if res.Validation == nil || res.Validation.Valid {
			continue
		}
		name := res.Target
		if name == "" {
			name = "(generated)"
		}
		for _, msg := range res.Validation.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, msg)
		}
	}
	a.logger.Debug("completion finished", "documents", len(report.Results), "added", added)

	if report.Invalid() > 0 {
		return errVerificationFailed
	}
	return nil
}
