// Package ast provides an immutable syntax tree for JavaScript and TypeScript
// sources, reduced to the node shapes that can carry a module specifier.
//
// Nodes are never mutated after construction. Producers that need a different
// node go through the Update functions, which return the original node when
// nothing changed and otherwise a new node that shares the unchanged children.
// Every node remembers the source range it was parsed from; a rebuilt node
// keeps the range of the node it replaces, which is what lets Print reproduce
// the untouched parts of a file byte for byte.
package ast

// Range is a half-open byte range [Pos, End) in the source text.
type Range struct {
	Pos int `json:"pos"`
	End int `json:"end"`
}

// NoRange marks a synthesized node with no source position.
var NoRange = Range{Pos: -1, End: -1}

// IsValid reports whether the range points into source text.
func (r Range) IsValid() bool {
	return r.Pos >= 0 && r.End >= r.Pos
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	if !r.IsValid() {
		return 0
	}

	return r.End - r.Pos
}

// Node is implemented by every tree node. The unexported method closes the
// set of implementations to this package.
type Node interface {
	// Kind returns the grammar kind the node was lowered from.
	Kind() string
	// Range returns the node's source range.
	Range() Range

	isNode()
}

func (*SourceFile) isNode()              {}
func (*Generic) isNode()                 {}
func (*Identifier) isNode()              {}
func (*StringLiteral) isNode()           {}
func (*ImportKeyword) isNode()           {}
func (*CallExpression) isNode()          {}
func (*ImportEqualsDeclaration) isNode() {}
func (*ExternalModuleReference) isNode() {}
func (*ImportType) isNode()              {}
func (*LiteralType) isNode()             {}
func (*ImportDeclaration) isNode()       {}
func (*ExportDeclaration) isNode()       {}
func (*ModuleDeclaration) isNode()       {}

// Grammar kinds of the typed nodes.
const (
	KindSourceFile              = "program"
	KindIdentifier              = "identifier"
	KindStringLiteral           = "string"
	KindImportKeyword           = "import"
	KindCallExpression          = "call_expression"
	KindImportEqualsDeclaration = "import_equals_declaration"
	KindExternalModuleReference = "external_module_reference"
	KindImportType              = "import_type"
	KindLiteralType             = "literal_type"
	KindImportDeclaration       = "import_statement"
	KindExportDeclaration       = "export_statement"
	KindModuleDeclaration       = "module"
)

// SourceFile is the root of a parsed file.
type SourceFile struct {
	FileName          string
	Language          string
	Text              []byte
	Statements        []Node
	IsDeclarationFile bool
}

// Kind implements Node.
func (*SourceFile) Kind() string { return KindSourceFile }

// Range covers the whole text.
func (sf *SourceFile) Range() Range { return Range{Pos: 0, End: len(sf.Text)} }

// Generic is any node without a dedicated type. Its named children are kept
// in source order; everything between them is reproduced from source text.
type Generic struct {
	kind     string
	rng      Range
	Children []Node
}

// NewGeneric creates a generic node of the given grammar kind.
func NewGeneric(kind string, rng Range, children []Node) *Generic {
	return &Generic{kind: kind, rng: rng, Children: children}
}

// Kind implements Node.
func (g *Generic) Kind() string { return g.kind }

// Range implements Node.
func (g *Generic) Range() Range { return g.rng }

// Identifier is a plain name.
type Identifier struct {
	Text string
	rng  Range
}

// NewIdentifier creates an identifier node.
func NewIdentifier(text string, rng Range) *Identifier {
	return &Identifier{Text: text, rng: rng}
}

// Kind implements Node.
func (*Identifier) Kind() string { return KindIdentifier }

// Range implements Node.
func (id *Identifier) Range() Range { return id.rng }

// StringLiteral is a quoted string. Text holds the decoded value.
type StringLiteral struct {
	Text        string
	Quote       byte
	rng         Range
	synthesized bool
}

// NewStringLiteral creates a string literal parsed from source.
func NewStringLiteral(text string, quote byte, rng Range) *StringLiteral {
	return &StringLiteral{Text: text, Quote: quote, rng: rng}
}

// CreateStringLiteral creates a synthesized literal with no source position.
// It prints with double quotes unless it takes over another literal's place
// through ReplaceStringLiteral.
func CreateStringLiteral(text string) *StringLiteral {
	return &StringLiteral{Text: text, Quote: '"', rng: NoRange, synthesized: true}
}

// ReplaceStringLiteral creates a synthesized literal that occupies original's
// source range and reuses its quote character.
func ReplaceStringLiteral(original *StringLiteral, text string) *StringLiteral {
	return &StringLiteral{Text: text, Quote: original.Quote, rng: original.rng, synthesized: true}
}

// Kind implements Node.
func (*StringLiteral) Kind() string { return KindStringLiteral }

// Range implements Node.
func (sl *StringLiteral) Range() Range { return sl.rng }

// Synthesized reports whether the literal was created rather than parsed.
func (sl *StringLiteral) Synthesized() bool { return sl.synthesized }

// ImportKeyword is the `import` callee of a dynamic import call.
type ImportKeyword struct {
	rng Range
}

// NewImportKeyword creates an import keyword node.
func NewImportKeyword(rng Range) *ImportKeyword {
	return &ImportKeyword{rng: rng}
}

// Kind implements Node.
func (*ImportKeyword) Kind() string { return KindImportKeyword }

// Range implements Node.
func (ik *ImportKeyword) Range() Range { return ik.rng }

// CallExpression is `callee<T>(args)`. TypeArguments may be nil.
type CallExpression struct {
	Expression    Node
	TypeArguments Node
	Arguments     []Node
	rng           Range
}

// Kind implements Node.
func (*CallExpression) Kind() string { return KindCallExpression }

// Range implements Node.
func (ce *CallExpression) Range() Range { return ce.rng }

// ImportEqualsDeclaration is `import name = require("m")`.
type ImportEqualsDeclaration struct {
	Name            Node
	ModuleReference Node
	IsTypeOnly      bool
	rng             Range
}

// Kind implements Node.
func (*ImportEqualsDeclaration) Kind() string { return KindImportEqualsDeclaration }

// Range implements Node.
func (ie *ImportEqualsDeclaration) Range() Range { return ie.rng }

// ExternalModuleReference is the `require("m")` half of an import-equals declaration.
type ExternalModuleReference struct {
	Expression Node
	rng        Range
}

// Kind implements Node.
func (*ExternalModuleReference) Kind() string { return KindExternalModuleReference }

// Range implements Node.
func (em *ExternalModuleReference) Range() Range { return em.rng }

// ImportType is a type-level `import("m")`, optionally prefixed by typeof.
// Qualifier and TypeArguments may be nil.
type ImportType struct {
	Argument      Node
	Qualifier     Node
	TypeArguments Node
	IsTypeOf      bool
	rng           Range
}

// Kind implements Node.
func (*ImportType) Kind() string { return KindImportType }

// Range implements Node.
func (it *ImportType) Range() Range { return it.rng }

// LiteralType wraps a literal used in type position.
type LiteralType struct {
	Literal Node
	rng     Range
}

// Kind implements Node.
func (*LiteralType) Kind() string { return KindLiteralType }

// Range implements Node.
func (lt *LiteralType) Range() Range { return lt.rng }

// ImportDeclaration is a static import with a module specifier.
// ImportClause and Attributes may be nil.
type ImportDeclaration struct {
	ImportClause    Node
	ModuleSpecifier Node
	Attributes      Node
	IsTypeOnly      bool
	rng             Range
}

// Kind implements Node.
func (*ImportDeclaration) Kind() string { return KindImportDeclaration }

// Range implements Node.
func (id *ImportDeclaration) Range() Range { return id.rng }

// ExportDeclaration is a re-export with a module specifier. ExportClause is
// nil for `export * from`.
type ExportDeclaration struct {
	ExportClause    Node
	ModuleSpecifier Node
	Attributes      Node
	IsTypeOnly      bool
	rng             Range
}

// Kind implements Node.
func (*ExportDeclaration) Kind() string { return KindExportDeclaration }

// Range implements Node.
func (ed *ExportDeclaration) Range() Range { return ed.rng }

// ModuleDeclaration is `module name { ... }` or `namespace name { ... }`.
// Body is nil for the shorthand `declare module "m";`.
type ModuleDeclaration struct {
	Name Node
	Body Node
	rng  Range
}

// Kind implements Node.
func (*ModuleDeclaration) Kind() string { return KindModuleDeclaration }

// Range implements Node.
func (md *ModuleDeclaration) Range() Range { return md.rng }
