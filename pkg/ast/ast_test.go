package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"
)

const sampleSource = "import x from \"a\";\nfoo(\"b\");\n"

// buildSample lowers sampleSource by hand:
//
//	import x from "a";   -> [0,18)  clause [7,8)  specifier [14,17)
//	foo("b");            -> [19,28) call [19,27) callee [19,22) arg [23,26)
func buildSample() (*ast.SourceFile, *ast.ImportDeclaration, *ast.CallExpression) {
	clause := ast.NewGeneric("import_clause", ast.Range{Pos: 7, End: 8}, []ast.Node{
		ast.NewIdentifier("x", ast.Range{Pos: 7, End: 8}),
	})
	decl := ast.NewImportDeclaration(clause, ast.NewStringLiteral("a", '"', ast.Range{Pos: 14, End: 17}), nil, false,
		ast.Range{Pos: 0, End: 18})

	call := ast.NewCallExpression(
		ast.NewIdentifier("foo", ast.Range{Pos: 19, End: 22}),
		nil,
		[]ast.Node{ast.NewStringLiteral("b", '"', ast.Range{Pos: 23, End: 26})},
		ast.Range{Pos: 19, End: 27},
	)
	stmt := ast.NewGeneric("expression_statement", ast.Range{Pos: 19, End: 28}, []ast.Node{call})

	sf := &ast.SourceFile{
		FileName:   "sample.ts",
		Language:   "typescript",
		Text:       []byte(sampleSource),
		Statements: []ast.Node{decl, stmt},
	}

	return sf, decl, call
}

func TestPrint_RoundTripIsIdentity(t *testing.T) {
	t.Parallel()

	sf, _, _ := buildSample()

	assert.Equal(t, sampleSource, string(ast.Print(sf)))
}

func TestVisitEachChild_IdentityVisitorPreservesNodes(t *testing.T) {
	t.Parallel()

	sf, decl, call := buildSample()

	var visit ast.Visitor

	visit = func(n ast.Node) ast.Node {
		return ast.VisitEachChild(n, visit)
	}

	out := ast.VisitEachChild(sf, visit)

	assert.Same(t, sf, out)

	outSF, ok := out.(*ast.SourceFile)
	require.True(t, ok)
	assert.Same(t, decl, outSF.Statements[0])

	stmt, ok := outSF.Statements[1].(*ast.Generic)
	require.True(t, ok)
	assert.Same(t, call, stmt.Children[0])
}

func TestUpdate_RebuildsOnlyChangedPath(t *testing.T) {
	t.Parallel()

	sf, decl, call := buildSample()

	oldSpec, ok := decl.ModuleSpecifier.(*ast.StringLiteral)
	require.True(t, ok)

	newSpec := ast.ReplaceStringLiteral(oldSpec, "c/d")
	newDecl := ast.UpdateImportDeclaration(decl, decl.ImportClause, newSpec, decl.Attributes)

	require.NotSame(t, decl, newDecl)
	assert.Same(t, decl.ImportClause, newDecl.ImportClause)
	assert.Equal(t, decl.Range(), newDecl.Range())

	newSF := ast.UpdateSourceFile(sf, []ast.Node{newDecl, sf.Statements[1]})

	stmt, ok := newSF.Statements[1].(*ast.Generic)
	require.True(t, ok)
	assert.Same(t, call, stmt.Children[0])

	assert.Equal(t, "import x from \"c/d\";\nfoo(\"b\");\n", string(ast.Print(newSF)))
	assert.Equal(t, sampleSource, string(ast.Print(sf)), "original tree must be untouched")
}

func TestUpdate_SameArgumentsReturnSameNode(t *testing.T) {
	t.Parallel()

	_, decl, call := buildSample()

	assert.Same(t, decl, ast.UpdateImportDeclaration(decl, decl.ImportClause, decl.ModuleSpecifier, decl.Attributes))
	assert.Same(t, call, ast.UpdateCallExpression(call, call.Expression, call.TypeArguments, call.Arguments))

	copied := append([]ast.Node(nil), call.Arguments...)
	assert.Same(t, call, ast.UpdateCallExpression(call, call.Expression, call.TypeArguments, copied),
		"element-wise equal argument lists are the same")
}

func TestReplaceStringLiteral_KeepsQuoteAndRange(t *testing.T) {
	t.Parallel()

	orig := ast.NewStringLiteral("old", '\'', ast.Range{Pos: 3, End: 8})
	repl := ast.ReplaceStringLiteral(orig, "new")

	assert.True(t, repl.Synthesized())
	assert.False(t, orig.Synthesized())
	assert.Equal(t, byte('\''), repl.Quote)
	assert.Equal(t, orig.Range(), repl.Range())
	assert.Equal(t, "new", repl.Text)
}

func TestCreateStringLiteral_HasNoRange(t *testing.T) {
	t.Parallel()

	lit := ast.CreateStringLiteral("x")

	assert.False(t, lit.Range().IsValid())
	assert.Equal(t, 0, lit.Range().Len())
	assert.True(t, lit.Synthesized())
}

func TestQuoteString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		quote byte
		want  string
	}{
		{name: "double", in: "./a", quote: '"', want: `"./a"`},
		{name: "single", in: "./a", quote: '\'', want: `'./a'`},
		{name: "escape own quote", in: `it's`, quote: '\'', want: `'it\'s'`},
		{name: "other quote untouched", in: `say "hi"`, quote: '\'', want: `'say "hi"'`},
		{name: "backslash", in: `a\b`, quote: '"', want: `"a\\b"`},
		{name: "newline", in: "a\nb", quote: '"', want: `"a\nb"`},
		{name: "line separator", in: "a\u2028b", quote: '"', want: `"a\u2028b"`},
		{name: "control", in: "a\x01b", quote: '"', want: `"a\x01b"`},
		{name: "unknown quote falls back", in: "a", quote: '`', want: `"a"`},
		{name: "unicode kept", in: "./café", quote: '"', want: `"./café"`},
		{name: "lone surrogate escaped", in: "./g/\xed\xa0\xbd", quote: '"', want: `"./g/\ud83d"`},
		{name: "invalid byte kept", in: "a\xffb", quote: '"', want: "\"a\xffb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ast.QuoteString(tt.in, tt.quote))
		})
	}
}

func TestInspect_PreOrderAndPruning(t *testing.T) {
	t.Parallel()

	sf, _, _ := buildSample()

	var kinds []string

	ast.Inspect(sf, func(n ast.Node) bool {
		kinds = append(kinds, n.Kind())

		return n.Kind() != ast.KindImportDeclaration
	})

	assert.Equal(t, []string{
		ast.KindSourceFile,
		ast.KindImportDeclaration,
		"expression_statement",
		ast.KindCallExpression,
		ast.KindIdentifier,
		ast.KindStringLiteral,
	}, kinds)
}

func TestVisitEachChild_NilRemovesFromList(t *testing.T) {
	t.Parallel()

	sf, _, _ := buildSample()

	out := ast.VisitEachChild(sf, func(n ast.Node) ast.Node {
		if n.Kind() == ast.KindImportDeclaration {
			return nil
		}

		return n
	})

	outSF, ok := out.(*ast.SourceFile)
	require.True(t, ok)
	require.Len(t, outSF.Statements, 1)
	assert.Equal(t, ast.KindCallExpression, ast.Children(outSF.Statements[0])[0].Kind())
	assert.Len(t, sf.Statements, 2)
}
