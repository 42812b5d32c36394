package compiler_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/compiler"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/parse"
)

// mapLiterals returns a transform that rewrites every string literal
// accepted by match through fn and reports each change.
func mapLiterals(match func(string) bool, fn func(string) string) compiler.TransformFunc {
	return func(tc *compiler.TransformContext, sf *ast.SourceFile) *ast.SourceFile {
		var visit ast.Visitor

		visit = func(n ast.Node) ast.Node {
			if lit, ok := n.(*ast.StringLiteral); ok && match(lit.Text) {
				to := fn(lit.Text)
				tc.Report(compiler.Change{Kind: "literal", From: lit.Text, To: to, Range: lit.Range()})

				return ast.ReplaceStringLiteral(lit, to)
			}

			return ast.VisitEachChild(n, visit)
		}

		out, _ := visit(sf).(*ast.SourceFile)

		return out
	}
}

func hasPrefix(prefix string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, prefix) }
}

func TestCompile_NoHooks(t *testing.T) {
	t.Parallel()

	content := []byte("import a from 'a';\n")

	out, err := compiler.NewHost(nil).Compile(context.Background(), "a.ts", content)
	require.NoError(t, err)

	assert.False(t, out.Changed)
	assert.Same(t, out.Original, out.Tree)
	assert.Equal(t, content, out.Text)
	assert.Empty(t, out.Changes)
}

func TestCompile_AfterRunsInOrder(t *testing.T) {
	t.Parallel()

	host := compiler.NewHost(parse.NewParser())
	host.Attach(compiler.Hooks{After: mapLiterals(hasPrefix("a"), strings.ToUpper)})
	host.Attach(compiler.Hooks{After: mapLiterals(hasPrefix("A"), func(s string) string { return s + "2" })})

	out, err := host.Compile(context.Background(), "m.ts", []byte("import x from 'ab';\nimport y from \"bc\";\n"))
	require.NoError(t, err)

	assert.True(t, out.Changed)
	assert.Equal(t, "import x from 'AB2';\nimport y from \"bc\";\n", string(out.Text))

	// The second transform only sees "AB", produced by the first.
	require.Len(t, out.Changes, 2)
	assert.Equal(t, "ab", out.Changes[0].From)
	assert.Equal(t, "AB", out.Changes[1].From)
	assert.Equal(t, "AB2", out.Changes[1].To)
	assert.Equal(t, compiler.StageAfter, out.Changes[1].Stage)
}

func TestCompile_DeclarationFilesUseAfterDeclarations(t *testing.T) {
	t.Parallel()

	calls := map[compiler.Stage]int{}

	count := func(tc *compiler.TransformContext, sf *ast.SourceFile) *ast.SourceFile {
		calls[tc.Stage]++

		assert.Equal(t, sf.FileName, tc.FileName)
		assert.NotNil(t, tc.Context())
		assert.NotNil(t, tc.Logger)

		return sf
	}

	host := compiler.NewHost(nil)
	host.Attach(compiler.Hooks{After: count, AfterDeclarations: count})

	_, err := host.Compile(context.Background(), "types.d.ts", []byte("declare module 'm' {}\n"))
	require.NoError(t, err)

	_, err = host.Compile(context.Background(), "main.ts", []byte("export {};\n"))
	require.NoError(t, err)

	_, err = host.Compile(context.Background(), "main.js", []byte("export {};\n"))
	require.NoError(t, err)

	assert.Equal(t, map[compiler.Stage]int{compiler.StageAfter: 2, compiler.StageAfterDeclarations: 1}, calls)
}

func TestCompile_ParseError(t *testing.T) {
	t.Parallel()

	_, err := compiler.NewHost(nil).Compile(context.Background(), "a.rb", []byte("require 'x'"))
	require.ErrorIs(t, err, parse.ErrUnsupportedLanguage)
}

func TestStage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "after", compiler.StageAfter.String())
	assert.Equal(t, "afterDeclarations", compiler.StageAfterDeclarations.String())
	assert.Equal(t, "Stage(7)", compiler.Stage(7).String())

	data, err := json.Marshal(compiler.Change{Stage: compiler.StageAfterDeclarations, Kind: "k"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage":"afterDeclarations"`)
}
