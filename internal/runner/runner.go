// Package runner completes document files against a schema file.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/schemafill/internal/cache"
	"github.com/usestring/schemafill/internal/config"
	"github.com/usestring/schemafill/pkg/completion"
	"github.com/usestring/schemafill/pkg/document"
	"github.com/usestring/schemafill/pkg/query"
	"github.com/usestring/schemafill/pkg/types"
)

// Stdin is the target name that reads the document from standard input.
const Stdin = "-"

// Job describes one invocation: a schema and the documents to complete.
type Job struct {
	SchemaPath string
	// Targets are document paths. No targets means generate from scratch.
	Targets []string
	Options completion.Options
	// Format overrides format detection for targets and output.
	Format document.Format
	// Select is a jq expression applied to each completed document.
	Select  string
	Verify  bool
	Create  bool
	Output  string
	InPlace bool
}

// Result is the outcome for a single target.
type Result struct {
	Target     string                  `json:"target"`
	Written    string                  `json:"written"`
	Format     document.Format         `json:"format"`
	Added      int                     `json:"added"`
	Validation *types.ValidationResult `json:"validation,omitempty"`
}

// Report collects results in target order.
type Report struct {
	Results []Result `json:"results"`
}

// Invalid returns the number of results that failed verification.
func (r Report) Invalid() int {
	n := 0
	for _, res := range r.Results {
		if res.Validation != nil && !res.Validation.Valid {
			n++
		}
	}
	return n
}

// Runner processes jobs. It is safe for concurrent use.
type Runner struct {
	workers int
	schemas *cache.SchemaCache
	logger  *slog.Logger
	stdin   io.Reader
	stdout  io.Writer
	queries *query.Engine
}

// Option configures a Runner.
type Option func(*Runner)

// WithStdio replaces standard input and output.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		r.stdin = in
		r.stdout = out
	}
}

// New creates a runner. A nil logger uses slog.Default().
func New(cfg *config.Config, schemas *cache.SchemaCache, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		workers: cfg.Workers,
		schemas: schemas,
		logger:  logger,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		queries: query.NewEngine(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (j Job) validate() error {
	if j.SchemaPath == "" {
		return errors.New("a schema path is required")
	}
	if j.Output != "" && j.InPlace {
		return errors.New("output file and in-place are mutually exclusive")
	}
	if j.InPlace && len(j.Targets) == 0 {
		return errors.New("in-place requires at least one target")
	}
	if j.InPlace && j.Select != "" {
		return errors.New("select cannot be combined with in-place")
	}
	if !j.InPlace && len(j.Targets) > 1 {
		return errors.New("multiple targets require in-place")
	}
	for _, t := range j.Targets {
		if t == Stdin && (j.InPlace || len(j.Targets) > 1) {
			return errors.New("standard input can only be a single target without in-place")
		}
	}
	return nil
}

// Run executes the job. Targets are processed concurrently; the first
// failure cancels the rest and is returned together with the results of
// targets that completed.
func (r *Runner) Run(ctx context.Context, job Job) (Report, error) {
	if err := job.validate(); err != nil {
		return Report{}, err
	}
	if job.Select != "" {
		if err := r.queries.ValidateExpression(job.Select); err != nil {
			return Report{}, err
		}
	}

	entry, err := r.loadSchema(job.SchemaPath)
	if err != nil {
		return Report{}, err
	}

	if len(job.Targets) == 0 {
		res, err := r.generate(ctx, job, entry)
		if err != nil {
			return Report{}, err
		}
		return Report{Results: []Result{res}}, nil
	}

	results := make([]Result, len(job.Targets))
	done := make([]bool, len(job.Targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, target := range job.Targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.completeTarget(gctx, job, entry, target)
			if err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}
			results[i] = res
			done[i] = true
			return nil
		})
	}
	err = g.Wait()

	var report Report
	for i, ok := range done {
		if ok {
			report.Results = append(report.Results, results[i])
		}
	}
	return report, err
}

func (r *Runner) loadSchema(path string) (*cache.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	entry, err := r.schemas.GetOrParse(data, document.DetectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entry, nil
}

func (r *Runner) generate(ctx context.Context, job Job, entry *cache.Entry) (Result, error) {
	format := job.Format
	if format == "" {
		if job.Output != "" {
			format = document.DetectFormat(job.Output, nil)
		} else {
			format = document.DetectFormat(job.SchemaPath, nil)
		}
	}
	return r.finish(ctx, job, entry, "", nil, false, format)
}

func (r *Runner) completeTarget(ctx context.Context, job Job, entry *cache.Entry, target string) (Result, error) {
	data, err := r.read(target)
	switch {
	case errors.Is(err, fs.ErrNotExist) && job.Create:
		r.logger.Debug("target does not exist, creating", "target", target)
		data = nil
	case err != nil:
		return Result{}, err
	}

	format := job.Format
	if format == "" {
		format = document.DetectFormat(target, data)
	}

	doc, present, err := document.Decode(data, format)
	if err != nil {
		return Result{}, err
	}
	return r.finish(ctx, job, entry, target, doc, present, format)
}

func (r *Runner) finish(ctx context.Context, job Job, entry *cache.Entry, target string, doc any, present bool, format document.Format) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	engine := completion.New(job.Options, r.logger.With("target", target))
	out, stats, err := engine.CompleteWithStats(entry.Schema, doc, present)
	if err != nil {
		return Result{}, err
	}

	res := Result{Target: target, Format: format, Added: stats.Added}

	if job.Verify {
		v, err := entry.Validator()
		if err != nil {
			return Result{}, fmt.Errorf("compiling schema for verification: %w", err)
		}
		res.Validation = v.Validate(out)
		if !res.Validation.Valid {
			r.logger.Warn("completed document does not validate", "target", target, "errors", len(res.Validation.Errors))
		}
	}

	if job.Select != "" {
		out, err = r.queries.Select(out, job.Select)
		if err != nil {
			return Result{}, err
		}
	}

	encoded, err := document.Encode(out, format)
	if err != nil {
		return Result{}, err
	}

	switch {
	case job.InPlace:
		res.Written = target
	case job.Output != "":
		res.Written = job.Output
	}
	if err := r.write(res.Written, encoded); err != nil {
		return Result{}, err
	}

	r.logger.Debug("document completed", "target", target, "added", stats.Added, "written", res.Written)
	return res, nil
}

func (r *Runner) read(target string) ([]byte, error) {
	if target == Stdin {
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading standard input: %w", err)
		}
		return data, nil
	}
	return os.ReadFile(target)
}

// write replaces path atomically, or writes to stdout when path is empty.
func (r *Runner) write(path string, data []byte) error {
	if path == "" {
		_, err := io.Copy(r.stdout, bytes.NewReader(data))
		return err
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
