package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usestring/schemafill/internal/runner"
	"github.com/usestring/schemafill/pkg/document"
	"github.com/usestring/schemafill/pkg/infer"
)

type inferOptions struct {
	output       string
	format       string
	noRequired   bool
	noFormats    bool
	closeObjects bool
}

func newInferCmd(a *app) *cobra.Command {
	var o inferOptions

	cmd := &cobra.Command{
		Use:   "infer SAMPLE...",
		Short: "Derive a JSON Schema from sample documents",
		Long: `Infer a schema covering every SAMPLE. Properties present in all samples
become required, so the schema can drive "schemafill complete" for other
documents of the same shape. Use "-" to read a sample from standard input.`,
		Example: `  schemafill infer prod.yaml staging.yaml -o app.schema.json
  schemafill infer --close-objects --format yaml config.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(cmd, a, &o, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "write the schema to this file")
	f.StringVar(&o.format, "format", "", "schema format: json or yaml (default: from -o, else json)")
	f.BoolVar(&o.noRequired, "no-required", false, "do not mark any property as required")
	f.BoolVar(&o.noFormats, "no-formats", false, "do not detect date, date-time and uri strings")
	f.BoolVar(&o.closeObjects, "close-objects", false, "set additionalProperties to false on every object")

	return cmd
}

func runInfer(cmd *cobra.Command, a *app, o *inferOptions, paths []string) error {
	opts := infer.DefaultOptions()
	opts.Required = !o.noRequired
	opts.Formats = !o.noFormats
	if o.closeObjects {
		closed := false
		opts.AdditionalProperties = &closed
	}

	samples := make([]any, 0, len(paths))
	for _, path := range paths {
		v, err := readSample(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		samples = append(samples, v)
	}

	result, err := infer.Infer(opts, samples...)
	if err != nil {
		return err
	}
	tree, err := result.Document()
	if err != nil {
		return err
	}

	format := document.JSON
	switch {
	case o.format != "":
		if format, err = document.ParseFormat(o.format); err != nil {
			return err
		}
	case strings.HasSuffix(o.output, ".yaml"), strings.HasSuffix(o.output, ".yml"):
		format = document.YAML
	}
	out, err := document.Encode(tree, format)
	if err != nil {
		return err
	}

	a.logger.Debug("schema inferred", "samples", result.SampleCount, "all_match", result.AllMatch)

	if o.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(o.output, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", o.output, err)
	}
	return nil
}

func readSample(stdin io.Reader, path string) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == runner.Stdin {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading sample %s: %w", path, err)
	}

	v, present, err := document.Decode(data, document.DetectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("decoding sample %s: %w", path, err)
	}
	if !present {
		return nil, fmt.Errorf("sample %s is empty", path)
	}
	return v, nil
}
