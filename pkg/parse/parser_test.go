package parse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/parse"
)

const moduleSource = `#!/usr/bin/env node
// leading comment
import x, { y as z } from "@app/foo";
import "./side-effect";
import type { T } from '@app/types';
import legacy = require("@app/legacy");
export * from "@app/all";
export { a, b as c } from '@app/named';
export const local = 1;
const lazy = import("@app/lazy");
const cjs = require("@app/cjs");
const notASite = "@app/plain";
type Q = typeof import("@app/query");
declare module "@app/ambient" {
  export const v: number;
}
namespace N {
  export const n = 1;
}
`

func parseSource(t *testing.T, name, src string) *ast.SourceFile {
	t.Helper()

	sf, err := parse.NewParser().Parse(context.Background(), name, []byte(src))
	require.NoError(t, err)
	require.NotNil(t, sf)

	return sf
}

func collect[T ast.Node](root ast.Node) []T {
	var out []T

	ast.Inspect(root, func(n ast.Node) bool {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}

		return true
	})

	return out
}

func specifier(t *testing.T, n ast.Node) string {
	t.Helper()

	lit, ok := n.(*ast.StringLiteral)
	require.True(t, ok, "expected string literal, got %T", n)

	return lit.Text
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"module.ts":  moduleSource,
		"empty.ts":   "",
		"comment.js": "// only a comment\n",
		"broken.ts":  "import { from \"x\";\nconst = ;\n",
		"view.tsx":   "import React from 'react';\nexport const V = () => <div className=\"a\">{require('./b')}</div>;\n",
		"app.jsx":    "const C = () => <span>{import('./lazy')}</span>;\n",
		"lib.cjs":    "module.exports = require('./impl');\n",
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sf := parseSource(t, name, src)
			assert.Equal(t, src, string(ast.Print(sf)))
		})
	}
}

func TestParse_ImportDeclarations(t *testing.T) {
	t.Parallel()

	sf := parseSource(t, "module.ts", moduleSource)
	decls := collect[*ast.ImportDeclaration](sf)

	require.Len(t, decls, 3)
	assert.Equal(t, "@app/foo", specifier(t, decls[0].ModuleSpecifier))
	assert.NotNil(t, decls[0].ImportClause)
	assert.Equal(t, "./side-effect", specifier(t, decls[1].ModuleSpecifier))
	assert.Nil(t, decls[1].ImportClause)
	assert.Equal(t, "@app/types", specifier(t, decls[2].ModuleSpecifier))
	assert.True(t, decls[2].IsTypeOnly)

	lit, ok := decls[2].ModuleSpecifier.(*ast.StringLiteral)
	require.True(t, ok)
	assert.Equal(t, byte('\''), lit.Quote)
}

func TestParse_ImportEquals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		want     string
		wantDecl string
	}{
		{
			name:     "plain",
			src:      moduleSource,
			want:     "@app/legacy",
			wantDecl: `import legacy = require("@app/legacy");`,
		},
		{
			name:     "exported",
			src:      "export import eq = require(\"@app/eq\");\nconst after = 1;\n",
			want:     "@app/eq",
			wantDecl: `export import eq = require("@app/eq");`,
		},
		{
			name:     "exported in ambient module",
			src:      "declare module \"x\" {\n  export import y = require('@app/y');\n}\n",
			want:     "@app/y",
			wantDecl: `export import y = require('@app/y');`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sf := parseSource(t, "module.ts", tt.src)
			decls := collect[*ast.ImportEqualsDeclaration](sf)

			require.Len(t, decls, 1)

			ref, ok := decls[0].ModuleReference.(*ast.ExternalModuleReference)
			require.True(t, ok)
			assert.Equal(t, tt.want, specifier(t, ref.Expression))

			lit, ok := ref.Expression.(*ast.StringLiteral)
			require.True(t, ok)
			assert.Equal(t, "require("+string(sf.Text[lit.Range().Pos:lit.Range().End])+")",
				string(sf.Text[ref.Range().Pos:ref.Range().End]))
			assert.Equal(t, tt.wantDecl, string(sf.Text[decls[0].Range().Pos:decls[0].Range().End]))
			assert.Equal(t, tt.src, string(ast.Print(sf)))
		})
	}
}

func TestParse_ExportDeclarations(t *testing.T) {
	t.Parallel()

	sf := parseSource(t, "module.ts", moduleSource)
	decls := collect[*ast.ExportDeclaration](sf)

	require.Len(t, decls, 2, "exports without a from clause are not re-exports")
	assert.Equal(t, "@app/all", specifier(t, decls[0].ModuleSpecifier))
	assert.Nil(t, decls[0].ExportClause)
	assert.Equal(t, "@app/named", specifier(t, decls[1].ModuleSpecifier))
	assert.NotNil(t, decls[1].ExportClause)
}

func TestParse_Calls(t *testing.T) {
	t.Parallel()

	sf := parseSource(t, "module.ts", moduleSource)

	var importCalls, requireCalls []*ast.CallExpression

	for _, call := range collect[*ast.CallExpression](sf) {
		switch callee := call.Expression.(type) {
		case *ast.ImportKeyword:
			importCalls = append(importCalls, call)
		case *ast.Identifier:
			if callee.Text == "require" {
				requireCalls = append(requireCalls, call)
			}
		}
	}

	require.Len(t, importCalls, 1)
	require.Len(t, importCalls[0].Arguments, 1)
	assert.Equal(t, "@app/lazy", specifier(t, importCalls[0].Arguments[0]))

	require.Len(t, requireCalls, 1)
	assert.Equal(t, "@app/cjs", specifier(t, requireCalls[0].Arguments[0]))
}

func TestParse_ImportType(t *testing.T) {
	t.Parallel()

	sf := parseSource(t, "module.ts", moduleSource)
	types := collect[*ast.ImportType](sf)

	require.Len(t, types, 1)
	assert.True(t, types[0].IsTypeOf)

	lt, ok := types[0].Argument.(*ast.LiteralType)
	require.True(t, ok)
	assert.Equal(t, "@app/query", specifier(t, lt.Literal))
}

func TestParse_ModuleDeclarations(t *testing.T) {
	t.Parallel()

	sf := parseSource(t, "module.ts", moduleSource)
	mods := collect[*ast.ModuleDeclaration](sf)

	require.Len(t, mods, 2)
	assert.Equal(t, "@app/ambient", specifier(t, mods[0].Name))
	assert.NotNil(t, mods[0].Body)

	name, ok := mods[1].Name.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "N", name.Text)
}

func TestParse_DeclarationFile(t *testing.T) {
	t.Parallel()

	sf := parseSource(t, "types.d.ts", "declare module 'x';\n")

	assert.True(t, sf.IsDeclarationFile)
	assert.Equal(t, parse.TypeScript, sf.Language)
}

func TestParse_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	_, err := parse.NewParser().Parse(context.Background(), "main.py", []byte("import os\n"))

	require.ErrorIs(t, err, parse.ErrUnsupportedLanguage)
}

func TestParse_ConcurrentUse(t *testing.T) {
	t.Parallel()

	p := parse.NewParser()
	src := []byte("import a from './a';\n")

	errs := make(chan error, 16)

	for range 16 {
		go func() {
			_, err := p.Parse(context.Background(), "a.ts", src)
			errs <- err
		}()
	}

	for range 16 {
		require.NoError(t, <-errs)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "a.ts", want: parse.TypeScript},
		{name: "a.d.mts", want: parse.TypeScript},
		{name: "A.TSX", want: parse.TSX},
		{name: "a.jsx", want: parse.JavaScript},
		{name: "a.cjs", want: parse.JavaScript},
		{name: "bin/cli", content: "#!/usr/bin/env node\nrequire('./x');\n", want: parse.JavaScript},
		{name: "a.go", content: "package main\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, parse.DetectLanguage(tt.name, []byte(tt.content)))
		})
	}
}

func TestIsDeclarationFile(t *testing.T) {
	t.Parallel()

	assert.True(t, parse.IsDeclarationFile("index.d.ts"))
	assert.True(t, parse.IsDeclarationFile("dir/x.D.CTS"))
	assert.False(t, parse.IsDeclarationFile("index.ts"))
	assert.False(t, parse.IsDeclarationFile("d.ts.js"))
}

func TestExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{".cjs", ".cts", ".js", ".jsx", ".mjs", ".mts", ".ts", ".tsx"}, parse.Extensions())
}
