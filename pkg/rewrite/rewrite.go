// Package rewrite replaces module specifiers in a syntax tree according to an
// alias mapping.
//
// Six node shapes carry a specifier: require and dynamic import calls,
// `import x = require("m")` references, `import("m")` types, import and
// re-export declarations, and `declare module "m"` blocks. A matched node is
// rebuilt with only its specifier replaced; every other node is shared with
// the input tree unless one of its descendants changed.
package rewrite

import (
	"fmt"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/compiler"
)

// SiteKind identifies one of the node shapes holding a module specifier.
type SiteKind int

// Site kinds in matching precedence.
const (
	KindDynamicCall SiteKind = iota
	KindExternalModuleReference
	KindImportType
	KindImportDeclaration
	KindExportDeclaration
	KindAmbientModule
)

func (k SiteKind) String() string {
	switch k {
	case KindDynamicCall:
		return "dynamic-call"
	case KindExternalModuleReference:
		return "external-module-reference"
	case KindImportType:
		return "import-type"
	case KindImportDeclaration:
		return "import-declaration"
	case KindExportDeclaration:
		return "export-declaration"
	case KindAmbientModule:
		return "ambient-module"
	default:
		return fmt.Sprintf("SiteKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SiteKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Replacer maps a module path to its replacement. ok is false when the path
// is left as is. *alias.Mapping implements it.
type Replacer interface {
	Replace(path string) (string, bool)
}

// Site is a module specifier found in a tree.
type Site struct {
	Kind  SiteKind  `json:"kind"`
	Path  string    `json:"path"`
	Range ast.Range `json:"range"`
}

// Edit records one rewritten specifier. Range is the span of the literal.
type Edit struct {
	Kind  SiteKind  `json:"kind"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Range ast.Range `json:"range"`
}

// Transformer rewrites the module specifiers of whole files. It holds no
// mutable state and is safe for concurrent use.
type Transformer struct {
	replacer Replacer
}

// New returns a Transformer backed by replacer.
func New(replacer Replacer) *Transformer {
	return &Transformer{replacer: replacer}
}

// Transform rewrites node and its descendants. It returns node itself when
// nothing matched.
func (t *Transformer) Transform(node ast.Node) ast.Node {
	w := walker{replacer: t.replacer}

	return w.visit(node)
}

// TransformFile rewrites sf and reports the edits in source order.
func (t *Transformer) TransformFile(sf *ast.SourceFile) (*ast.SourceFile, []Edit) {
	w := walker{replacer: t.replacer}

	out, ok := ast.VisitEachChild(sf, w.visit).(*ast.SourceFile)
	if !ok {
		return sf, nil
	}

	return out, w.edits
}

// Hooks returns compiler hooks that run this transformer on both source and
// declaration output.
func (t *Transformer) Hooks() compiler.Hooks {
	return compiler.Hooks{
		After:             t.compilerTransform,
		AfterDeclarations: t.compilerTransform,
	}
}

func (t *Transformer) compilerTransform(tc *compiler.TransformContext, sf *ast.SourceFile) *ast.SourceFile {
	out, edits := t.TransformFile(sf)

	for _, e := range edits {
		tc.Report(compiler.Change{Kind: e.Kind.String(), From: e.From, To: e.To, Range: e.Range})
	}

	return out
}

// Sites lists every module specifier in the tree rooted at node, in source
// order, without rewriting anything.
func Sites(node ast.Node) []Site {
	var sites []Site

	ast.Inspect(node, func(n ast.Node) bool {
		if kind, lit, ok := matchSite(n); ok {
			sites = append(sites, Site{Kind: kind, Path: lit.Text, Range: lit.Range()})
		}

		return true
	})

	return sites
}

type walker struct {
	replacer Replacer
	edits    []Edit
}

func (w *walker) visit(node ast.Node) ast.Node {
	if kind, lit, ok := matchSite(node); ok {
		if to, changed := w.replacer.Replace(lit.Text); changed {
			w.edits = append(w.edits, Edit{Kind: kind, From: lit.Text, To: to, Range: lit.Range()})

			return rebuild(node, ast.ReplaceStringLiteral(lit, to))
		}
	}

	return ast.VisitEachChild(node, w.visit)
}
