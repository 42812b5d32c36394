// Package runner rewrites module specifiers across files and directories
// with a bounded pool of workers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/observability"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/compiler"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/parse"
)

var (
	// ErrFileTooLarge is reported for files above Options.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
	// ErrBinaryFile is reported for files that look binary.
	ErrBinaryFile = errors.New("binary file")
)

// trimInterval is how many files a worker parses between MallocTrim calls.
const trimInterval = 64

// Options controls file selection and output.
type Options struct {
	// Include lists accepted file name suffixes, e.g. ".ts" or ".d.ts".
	Include []string
	// Exclude lists glob patterns matched against base names.
	Exclude    []string
	SkipVendor bool
	// Workers defaults to GOMAXPROCS when not positive.
	Workers     int
	MaxFileSize int64
	// OutDir mirrors every processed file below this directory instead of
	// overwriting changed files in place.
	OutDir string
	DryRun bool
}

// Runner processes files through a compiler host.
type Runner struct {
	host    *compiler.Host
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.RewriteMetrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithTracer sets the tracer used for per-file spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) { r.tracer = tracer }
}

// WithMetrics records per-file metrics.
func WithMetrics(metrics *observability.RewriteMetrics) Option {
	return func(r *Runner) { r.metrics = metrics }
}

// New creates a Runner.
func New(host *compiler.Host, opts Options, options ...Option) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	r := &Runner{
		host:   host,
		opts:   opts,
		logger: slog.Default(),
		tracer: nooptrace.NewTracerProvider().Tracer(""),
	}

	for _, o := range options {
		o(r)
	}

	return r
}

// Run expands paths and processes every file. Per-file failures are
// recorded in the report; the returned error is reserved for expansion
// failures and cancellation.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "aliasrewrite.run",
		trace.WithAttributes(attribute.Int("run.workers", r.opts.Workers), attribute.Bool("run.dry", r.opts.DryRun)))
	defer span.End()

	targets, err := r.expand(paths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	r.logger.DebugContext(ctx, "expanded inputs", "files", len(targets), "workers", r.opts.Workers)

	report := &Report{DryRun: r.opts.DryRun, Files: make([]FileResult, 0, len(targets))}

	for res := range r.process(ctx, targets) {
		report.Files = append(report.Files, res)
	}

	report.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("run.files", len(report.Files)),
		attribute.Int("run.changed", report.ChangedFiles()),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return report, fmt.Errorf("run interrupted: %w", ctxErr)
	}

	return report, nil
}

// slot holds one file being processed. done is closed when res is final.
type slot struct {
	target target
	res    FileResult
	done   chan struct{}
}

// process fans files out to the workers and emits results in input order.
func (r *Runner) process(ctx context.Context, targets []target) <-chan FileResult {
	out := make(chan FileResult, r.opts.Workers)
	slots := make(chan *slot, r.opts.Workers)
	jobs := make(chan *slot, r.opts.Workers)

	go r.dispatch(ctx, targets, slots, jobs)

	wg := r.startWorkers(ctx, jobs)

	go r.emit(ctx, slots, out, wg)

	return out
}

func (r *Runner) dispatch(ctx context.Context, targets []target, slots, jobs chan<- *slot) {
	defer close(slots)
	defer close(jobs)

	for _, t := range targets {
		s := &slot{target: t, done: make(chan struct{})}

		select {
		case slots <- s:
		case <-ctx.Done():
			return
		}

		select {
		case jobs <- s:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) startWorkers(ctx context.Context, jobs <-chan *slot) *sync.WaitGroup {
	var wg sync.WaitGroup

	wg.Add(r.opts.Workers)

	for range r.opts.Workers {
		go func() {
			defer wg.Done()

			parsed := 0

			for s := range jobs {
				s.res = r.processFile(ctx, s.target)
				close(s.done)

				if parsed++; parsed%trimInterval == 0 {
					parse.MallocTrim()
				}
			}
		}()
	}

	return &wg
}

func (r *Runner) emit(ctx context.Context, slots <-chan *slot, out chan<- FileResult, wg *sync.WaitGroup) {
	defer close(out)

	for s := range slots {
		select {
		case <-s.done:
		case <-ctx.Done():
			wg.Wait()

			return
		}

		select {
		case out <- s.res:
		case <-ctx.Done():
			wg.Wait()

			return
		}
	}

	wg.Wait()
}

func (r *Runner) processFile(ctx context.Context, t target) FileResult {
	start := time.Now()
	res := FileResult{Path: t.path, OutPath: r.outPath(t)}

	ctx, span := r.tracer.Start(ctx, "aliasrewrite.file", trace.WithAttributes(attribute.String("file.path", t.path)))
	defer span.End()

	defer func() {
		res.Duration = time.Since(start)
		r.record(ctx, &res)

		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			r.logger.WarnContext(ctx, "file failed", "file", t.path, "error", res.Err)
		}
	}()

	content, err := r.read(t.path)
	if err != nil {
		res.Err = err

		return res
	}

	res.BytesIn = len(content)
	res.Original = content

	out, err := r.host.Compile(ctx, t.path, content)
	if err != nil {
		res.Err = err

		return res
	}

	res.Language = out.Original.Language
	res.Changes = out.Changes
	res.Rewritten = out.Text
	res.BytesOut = len(out.Text)

	span.SetAttributes(attribute.Int("file.changes", len(out.Changes)))

	// In place, unchanged files are left alone; an output directory gets
	// every processed file so it holds a complete tree.
	if r.opts.DryRun || (!out.Changed && r.opts.OutDir == "") {
		return res
	}

	if err := writeFile(res.OutPath, out.Text, t.path); err != nil {
		res.Err = err

		return res
	}

	res.Written = true

	return res
}

func (r *Runner) read(path string) ([]byte, error) {
	content, _, err := ReadSource(path, r.opts.MaxFileSize)

	return content, err
}

func (r *Runner) outPath(t target) string {
	if r.opts.OutDir == "" {
		return t.path
	}

	return filepath.Join(r.opts.OutDir, t.rel)
}

func (r *Runner) record(ctx context.Context, res *FileResult) {
	if r.metrics == nil {
		return
	}

	status := observability.StatusUnchanged

	switch {
	case res.Err != nil:
		status = observability.StatusError
	case res.Changed():
		status = observability.StatusChanged
	}

	r.metrics.RecordFile(ctx, status, res.BytesIn, res.Duration)

	for _, c := range res.Changes {
		r.metrics.RecordSpecifier(ctx, c.Stage.String(), c.Kind)
	}
}

// writeFile writes data to path with the permissions of src.
func writeFile(path string, data []byte, src string) error {
	perm := os.FileMode(0o644) //nolint:mnd // default source file mode

	if info, err := os.Stat(src); err == nil {
		perm = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd // directory mode
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
