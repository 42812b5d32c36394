// Package compiler is a minimal compilation host: it parses a file, runs the
// attached tree transforms at their hook point and emits the resulting text.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/parse"
)

// Stage identifies the hook point a transform runs at.
type Stage int

const (
	// StageAfter runs on emitted source files.
	StageAfter Stage = iota
	// StageAfterDeclarations runs on declaration output.
	StageAfterDeclarations
)

func (s Stage) String() string {
	switch s {
	case StageAfter:
		return "after"
	case StageAfterDeclarations:
		return "afterDeclarations"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Change describes one rewrite a transform applied.
type Change struct {
	Stage Stage     `json:"stage"`
	Kind  string    `json:"kind"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Range ast.Range `json:"range"`
}

// TransformContext is handed to every transform invocation.
type TransformContext struct {
	ctx      context.Context //nolint:containedctx // scoped to one transform call
	FileName string
	Stage    Stage
	Logger   *slog.Logger

	changes []Change
}

// Context returns the context of the compilation.
func (tc *TransformContext) Context() context.Context {
	return tc.ctx
}

// Report records a change made by the running transform.
func (tc *TransformContext) Report(c Change) {
	c.Stage = tc.Stage
	tc.changes = append(tc.changes, c)
}

// TransformFunc rewrites a source file. It must not mutate sf; it returns
// either sf itself or a new tree sharing unchanged nodes with it.
type TransformFunc func(tc *TransformContext, sf *ast.SourceFile) *ast.SourceFile

// Hooks holds the transforms for each hook point. A nil field is skipped.
type Hooks struct {
	After             TransformFunc
	AfterDeclarations TransformFunc
}

// Parser produces syntax trees for the host.
type Parser interface {
	Parse(ctx context.Context, filename string, content []byte) (*ast.SourceFile, error)
}

// Output is the result of compiling one file.
type Output struct {
	FileName string
	Original *ast.SourceFile
	Tree     *ast.SourceFile
	Text     []byte
	Changed  bool
	Changes  []Change
}

// Host runs attached transforms over parsed files. Attach every hook before
// the first Compile; after that a Host is safe for concurrent use.
type Host struct {
	parser            Parser
	logger            *slog.Logger
	after             []TransformFunc
	afterDeclarations []TransformFunc
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger passed to transforms.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// NewHost creates a host parsing with parser. A nil parser uses
// parse.NewParser.
func NewHost(parser Parser, opts ...Option) *Host {
	if parser == nil {
		parser = parse.NewParser()
	}

	h := &Host{parser: parser, logger: slog.Default()}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Attach registers hooks. Transforms run in attachment order.
func (h *Host) Attach(hooks Hooks) {
	if hooks.After != nil {
		h.after = append(h.after, hooks.After)
	}

	if hooks.AfterDeclarations != nil {
		h.afterDeclarations = append(h.afterDeclarations, hooks.AfterDeclarations)
	}
}

// Compile parses content, runs the transforms for its hook point and prints
// the result. Unchanged files are returned with their original bytes.
func (h *Host) Compile(ctx context.Context, filename string, content []byte) (*Output, error) {
	sf, err := h.parser.Parse(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", filename, err)
	}

	tree, changes := h.Transform(ctx, sf)

	out := &Output{
		FileName: filename,
		Original: sf,
		Tree:     tree,
		Text:     content,
		Changed:  tree != sf,
		Changes:  changes,
	}

	if out.Changed {
		out.Text = ast.Print(tree)
	}

	return out, nil
}

// Transform runs the hooks matching sf on an existing tree. Declaration
// files go through AfterDeclarations, everything else through After.
func (h *Host) Transform(ctx context.Context, sf *ast.SourceFile) (*ast.SourceFile, []Change) {
	stage, transforms := StageAfter, h.after
	if sf.IsDeclarationFile {
		stage, transforms = StageAfterDeclarations, h.afterDeclarations
	}

	tc := &TransformContext{
		ctx:      ctx,
		FileName: sf.FileName,
		Stage:    stage,
		Logger:   h.logger.With("file", sf.FileName, "stage", stage.String()),
	}

	tree := sf

	for _, transform := range transforms {
		tree = transform(tc, tree)
	}

	if len(tc.changes) > 0 {
		tc.Logger.DebugContext(ctx, "transformed", "changes", len(tc.changes))
	}

	return tree, tc.changes
}
