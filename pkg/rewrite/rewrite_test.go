package rewrite_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/alias"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/compiler"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/parse"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/rewrite"
)

// recordingReplacer counts the paths it is asked about.
type recordingReplacer struct {
	mu    sync.Mutex
	seen  []string
	inner rewrite.Replacer
}

func (r *recordingReplacer) Replace(path string) (string, bool) {
	r.mu.Lock()
	r.seen = append(r.seen, path)
	r.mu.Unlock()

	return r.inner.Replace(path)
}

func appMapping() *alias.Mapping {
	return alias.MustCompile(alias.Entry{Pattern: "^@app/", Replacement: "./generated/"})
}

func lit(text string) *ast.StringLiteral {
	return ast.NewStringLiteral(text, '"', ast.Range{Pos: 10, End: 10 + len(text) + 2})
}

func TestTransform_NoMatchKeepsIdentity(t *testing.T) {
	t.Parallel()

	tr := rewrite.New(appMapping())

	call := ast.NewCallExpression(ast.NewIdentifier("require", ast.NoRange), nil, []ast.Node{lit("lodash")}, ast.NoRange)
	decl := ast.NewImportDeclaration(nil, lit("./local"), nil, false, ast.NoRange)
	mod := ast.NewModuleDeclaration(lit("other"), ast.NewGeneric("statement_block", ast.NoRange, nil), ast.NoRange)

	for _, node := range []ast.Node{call, decl, mod} {
		assert.Same(t, node, tr.Transform(node))
	}
}

func TestTransform_EachSiteKindReplacesOnlyThePath(t *testing.T) {
	t.Parallel()

	tr := rewrite.New(appMapping())

	t.Run("dynamic import", func(t *testing.T) {
		t.Parallel()

		callee := ast.NewImportKeyword(ast.NoRange)
		typeArgs := ast.NewGeneric("type_arguments", ast.NoRange, nil)
		in := ast.NewCallExpression(callee, typeArgs, []ast.Node{lit("@app/a")}, ast.NoRange)

		out, ok := tr.Transform(in).(*ast.CallExpression)
		require.True(t, ok)
		require.NotSame(t, in, out)
		assert.Same(t, callee, out.Expression)
		assert.Same(t, typeArgs, out.TypeArguments)
		require.Len(t, out.Arguments, 1)
		assert.Equal(t, "./generated/a", out.Arguments[0].(*ast.StringLiteral).Text)
		assert.Equal(t, "@app/a", in.Arguments[0].(*ast.StringLiteral).Text)
	})

	t.Run("require", func(t *testing.T) {
		t.Parallel()

		callee := ast.NewIdentifier("require", ast.NoRange)
		in := ast.NewCallExpression(callee, nil, []ast.Node{lit("@app/b")}, ast.NoRange)

		out, ok := tr.Transform(in).(*ast.CallExpression)
		require.True(t, ok)
		assert.Same(t, callee, out.Expression)
		assert.Equal(t, "./generated/b", out.Arguments[0].(*ast.StringLiteral).Text)
	})

	t.Run("external module reference", func(t *testing.T) {
		t.Parallel()

		name := ast.NewIdentifier("x", ast.NoRange)
		ref := ast.NewExternalModuleReference(lit("@app/c"), ast.NoRange)
		in := ast.NewImportEqualsDeclaration(name, ref, true, ast.NoRange)

		out, ok := tr.Transform(in).(*ast.ImportEqualsDeclaration)
		require.True(t, ok)
		require.NotSame(t, in, out)
		assert.Same(t, name, out.Name)
		assert.True(t, out.IsTypeOnly)

		outRef, ok := out.ModuleReference.(*ast.ExternalModuleReference)
		require.True(t, ok)
		assert.Equal(t, "./generated/c", outRef.Expression.(*ast.StringLiteral).Text)
	})

	t.Run("import type", func(t *testing.T) {
		t.Parallel()

		qualifier := ast.NewIdentifier("Foo", ast.NoRange)
		typeArgs := ast.NewGeneric("type_arguments", ast.NoRange, nil)
		in := ast.NewImportType(ast.NewLiteralType(lit("@app/d"), ast.NoRange), qualifier, typeArgs, true, ast.NoRange)

		out, ok := tr.Transform(in).(*ast.ImportType)
		require.True(t, ok)
		require.NotSame(t, in, out)
		assert.Same(t, qualifier, out.Qualifier)
		assert.Same(t, typeArgs, out.TypeArguments)
		assert.True(t, out.IsTypeOf)

		lt, ok := out.Argument.(*ast.LiteralType)
		require.True(t, ok)
		assert.Equal(t, "./generated/d", lt.Literal.(*ast.StringLiteral).Text)
	})

	t.Run("import declaration", func(t *testing.T) {
		t.Parallel()

		clause := ast.NewGeneric("import_clause", ast.NoRange, nil)
		attrs := ast.NewGeneric("import_attribute", ast.NoRange, nil)
		in := ast.NewImportDeclaration(clause, lit("@app/e"), attrs, true, ast.NoRange)

		out, ok := tr.Transform(in).(*ast.ImportDeclaration)
		require.True(t, ok)
		require.NotSame(t, in, out)
		assert.Same(t, clause, out.ImportClause)
		assert.Same(t, attrs, out.Attributes)
		assert.True(t, out.IsTypeOnly)
		assert.Equal(t, "./generated/e", out.ModuleSpecifier.(*ast.StringLiteral).Text)
	})

	t.Run("export declaration", func(t *testing.T) {
		t.Parallel()

		clause := ast.NewGeneric("export_clause", ast.NoRange, nil)
		in := ast.NewExportDeclaration(clause, lit("@app/f"), nil, false, ast.NoRange)

		out, ok := tr.Transform(in).(*ast.ExportDeclaration)
		require.True(t, ok)
		require.NotSame(t, in, out)
		assert.Same(t, clause, out.ExportClause)
		assert.Equal(t, "./generated/f", out.ModuleSpecifier.(*ast.StringLiteral).Text)
	})

	t.Run("ambient module", func(t *testing.T) {
		t.Parallel()

		body := ast.NewGeneric("statement_block", ast.NoRange, nil)
		in := ast.NewModuleDeclaration(lit("@app/g"), body, ast.NoRange)

		out, ok := tr.Transform(in).(*ast.ModuleDeclaration)
		require.True(t, ok)
		require.NotSame(t, in, out)
		assert.Same(t, body, out.Body)
		assert.Equal(t, "./generated/g", out.Name.(*ast.StringLiteral).Text)
	})
}

func TestTransform_NonSiteStringsNeverReachReplacer(t *testing.T) {
	t.Parallel()

	rec := &recordingReplacer{inner: appMapping()}
	tr := rewrite.New(rec)

	tree := ast.NewGeneric("statement_block", ast.NoRange, []ast.Node{
		lit("@app/plain"),
		ast.NewCallExpression(ast.NewIdentifier("load", ast.NoRange), nil, []ast.Node{lit("@app/h")}, ast.NoRange),
		ast.NewCallExpression(ast.NewIdentifier("require", ast.NoRange), nil,
			[]ast.Node{lit("@app/i"), lit("@app/j")}, ast.NoRange),
		ast.NewImportType(ast.NewLiteralType(lit(""), ast.NoRange), nil, nil, false, ast.NoRange),
		ast.NewModuleDeclaration(ast.NewIdentifier("Space", ast.NoRange), nil, ast.NoRange),
	})

	assert.Same(t, tree, tr.Transform(tree))
	assert.Empty(t, rec.seen)
}

func TestTransform_OrderedCumulativeSubstitution(t *testing.T) {
	t.Parallel()

	m := alias.MustCompile(
		alias.Entry{Pattern: "^a/", Replacement: "b/"},
		alias.Entry{Pattern: "^b/", Replacement: "c/"},
	)

	in := ast.NewImportDeclaration(nil, lit("a/x"), nil, false, ast.NoRange)

	out, ok := rewrite.New(m).Transform(in).(*ast.ImportDeclaration)
	require.True(t, ok)
	assert.Equal(t, "c/x", out.ModuleSpecifier.(*ast.StringLiteral).Text)
}

func TestTransform_NoOpReplacementKeepsIdentity(t *testing.T) {
	t.Parallel()

	m := alias.MustCompile(alias.Entry{Pattern: "^(@app)/", Replacement: "$1/"})
	in := ast.NewImportDeclaration(nil, lit("@app/x"), nil, false, ast.NoRange)

	assert.Same(t, in, rewrite.New(m).Transform(in))
}

func TestTransformFile_RewrittenSiteIsNotRevisited(t *testing.T) {
	t.Parallel()

	src := "declare module \"@app/outer\" {\n  import x from \"@app/inner\";\n}\n"

	sf, err := parse.NewParser().Parse(context.Background(), "types.d.ts", []byte(src))
	require.NoError(t, err)

	out, edits := rewrite.New(appMapping()).TransformFile(sf)

	require.Len(t, edits, 1)
	assert.Equal(t, rewrite.KindAmbientModule, edits[0].Kind)
	assert.Equal(t, "declare module \"./generated/outer\" {\n  import x from \"@app/inner\";\n}\n", string(ast.Print(out)))

	sites := rewrite.Sites(sf)
	require.Len(t, sites, 2)
	assert.Equal(t, rewrite.KindAmbientModule, sites[0].Kind)
	assert.Equal(t, rewrite.KindImportDeclaration, sites[1].Kind)
	assert.Equal(t, "@app/inner", sites[1].Path)
}

func TestTransformFile_EndToEnd(t *testing.T) {
	t.Parallel()

	src := `import x from "@app/foo";
const y = require("@app/foo/bar");
declare module "@app/foo" {
  export const z: number;
}
const keep = "@app/foo";
`
	want := `import x from "./generated/foo";
const y = require("./generated/foo/bar");
declare module "./generated/foo" {
  export const z: number;
}
const keep = "@app/foo";
`

	host := compiler.NewHost(parse.NewParser())
	host.Attach(rewrite.New(appMapping()).Hooks())

	out, err := host.Compile(context.Background(), "index.ts", []byte(src))
	require.NoError(t, err)

	assert.True(t, out.Changed)
	assert.Equal(t, want, string(out.Text))
	require.Len(t, out.Changes, 3)
	assert.Equal(t, rewrite.KindImportDeclaration.String(), out.Changes[0].Kind)
	assert.Equal(t, rewrite.KindDynamicCall.String(), out.Changes[1].Kind)
	assert.Equal(t, rewrite.KindAmbientModule.String(), out.Changes[2].Kind)
	assert.Equal(t, compiler.StageAfter, out.Changes[0].Stage)
	assert.Equal(t, src, string(ast.Print(out.Original)), "input tree is not modified")
}

func TestHooks_DeclarationFileParity(t *testing.T) {
	t.Parallel()

	m := alias.MustCompile(alias.Entry{Pattern: "old/path", Replacement: "new/path"})

	host := compiler.NewHost(parse.NewParser())
	host.Attach(rewrite.New(m).Hooks())

	src := "declare module \"old/path\" {\n  export function f(): import(\"old/path/sub\").T;\n}\n"

	out, err := host.Compile(context.Background(), "index.d.ts", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "declare module \"new/path\" {\n  export function f(): import(\"old/path/sub\").T;\n}\n", string(out.Text))
	require.Len(t, out.Changes, 1)
	assert.Equal(t, compiler.StageAfterDeclarations, out.Changes[0].Stage)

	origMods := collectModules(out.Original)
	newMods := collectModules(out.Tree)

	require.Len(t, origMods, 1)
	require.Len(t, newMods, 1)
	assert.Same(t, origMods[0].Body, newMods[0].Body)
}

func TestTransformFile_KeepsQuoteStyle(t *testing.T) {
	t.Parallel()

	src := "import a from '@app/a';\nexport * from \"@app/b\";\nimport c = require('@app/c');\n"

	sf, err := parse.NewParser().Parse(context.Background(), "x.ts", []byte(src))
	require.NoError(t, err)

	out, edits := rewrite.New(appMapping()).TransformFile(sf)

	assert.Equal(t,
		"import a from './generated/a';\nexport * from \"./generated/b\";\nimport c = require('./generated/c');\n",
		string(ast.Print(out)))
	require.Len(t, edits, 3)
	assert.Equal(t, rewrite.KindExternalModuleReference, edits[2].Kind)
	assert.Equal(t, ast.Range{Pos: 14, End: 22}, edits[0].Range)
}

func TestTransformFile_ExportedImportEquals(t *testing.T) {
	t.Parallel()

	src := "import eq = require(\"@app/eq\");\nexport import eq2 = require(\"@app/eq2\");\n" +
		"declare module \"m\" {\n  export import y = require('@app/y');\n}\n"

	sf, err := parse.NewParser().Parse(context.Background(), "x.d.ts", []byte(src))
	require.NoError(t, err)

	out, edits := rewrite.New(appMapping()).TransformFile(sf)

	assert.Equal(t,
		"import eq = require(\"./generated/eq\");\nexport import eq2 = require(\"./generated/eq2\");\n"+
			"declare module \"m\" {\n  export import y = require('./generated/y');\n}\n",
		string(ast.Print(out)))
	require.Len(t, edits, 3)

	for _, edit := range edits {
		assert.Equal(t, rewrite.KindExternalModuleReference, edit.Kind)
	}
}

func TestTransformFile_LoneSurrogateSurvives(t *testing.T) {
	t.Parallel()

	sf, err := parse.NewParser().Parse(context.Background(), "x.ts", []byte(`import a from "@app/\uD83D";`))
	require.NoError(t, err)

	out, edits := rewrite.New(appMapping()).TransformFile(sf)

	require.Len(t, edits, 1)
	assert.Equal(t, `import a from "./generated/\ud83d";`, string(ast.Print(out)))
}

func TestTransformFile_UnchangedFileIsSameTree(t *testing.T) {
	t.Parallel()

	sf, err := parse.NewParser().Parse(context.Background(), "x.ts", []byte("import a from 'lodash';\n"))
	require.NoError(t, err)

	out, edits := rewrite.New(appMapping()).TransformFile(sf)

	assert.Same(t, sf, out)
	assert.Empty(t, edits)
}

func TestCompile_FatalConfigStopsBeforeAnyFile(t *testing.T) {
	t.Parallel()

	m, err := alias.Compile([]alias.Entry{{Pattern: "(", Replacement: "x"}})

	require.ErrorIs(t, err, alias.ErrInvalidPattern)
	assert.Nil(t, m)
}

func TestSiteKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dynamic-call", rewrite.KindDynamicCall.String())
	assert.Equal(t, "ambient-module", rewrite.KindAmbientModule.String())
	assert.Equal(t, "SiteKind(42)", rewrite.SiteKind(42).String())

	text, err := rewrite.KindImportType.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "import-type", string(text))
}

func TestTransformer_ConcurrentUse(t *testing.T) {
	t.Parallel()

	tr := rewrite.New(appMapping())

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			in := ast.NewImportDeclaration(nil, lit("@app/x"), nil, false, ast.NoRange)
			out, edits := tr.TransformFile(&ast.SourceFile{Statements: []ast.Node{in}})

			assert.Len(t, edits, 1)
			assert.NotSame(t, in, out.Statements[0])
		}()
	}

	wg.Wait()
}

func collectModules(root ast.Node) []*ast.ModuleDeclaration {
	var mods []*ast.ModuleDeclaration

	ast.Inspect(root, func(n ast.Node) bool {
		if m, ok := n.(*ast.ModuleDeclaration); ok {
			mods = append(mods, m)
		}

		return true
	})

	return mods
}
