package parse

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/safeconv"
)

// Grammar node kinds the lowerer gives a typed shape to.
const (
	tsComment             = "comment"
	tsHashBang            = "hash_bang_line"
	tsIdentifier          = "identifier"
	tsString              = "string"
	tsImport              = "import"
	tsCallExpression      = "call_expression"
	tsArguments           = "arguments"
	tsImportStatement     = "import_statement"
	tsImportClause        = "import_clause"
	tsImportRequireClause = "import_require_clause"
	tsImportAttribute     = "import_attribute"
	tsExportStatement     = "export_statement"
	tsImportAlias         = "import_alias"
	tsExpressionStatement = "expression_statement"
	tsParenthesized       = "parenthesized_expression"
	tsExportClause        = "export_clause"
	tsNamespaceExport     = "namespace_export"
	tsModule              = "module"
	tsInternalModule      = "internal_module"
	tsTypeQuery           = "type_query"
)

// typeContexts are the nodes below which an import call is a type reference
// rather than a runtime call.
var typeContexts = map[string]bool{
	"type_annotation":          true,
	"opting_type_annotation":   true,
	"omitting_type_annotation": true,
	"adding_type_annotation":   true,
	"asserts_annotation":       true,
	"type_alias_declaration":   true,
	"type_arguments":           true,
	"type_parameters":          true,
	"implements_clause":        true,
	"extends_type_clause":      true,
	tsTypeQuery:                true,
}

// typedTail lists expressions whose trailing children are types.
var typedTail = map[string]bool{
	"as_expression":        true,
	"satisfies_expression": true,
}

type lowerer struct {
	src []byte
}

func (l *lowerer) rng(n sitter.Node) ast.Range {
	return ast.Range{Pos: safeconv.MustUintToInt(n.StartByte()), End: safeconv.MustUintToInt(n.EndByte())}
}

func (l *lowerer) text(n sitter.Node) string {
	r := l.rng(n)
	if r.Pos < 0 || r.End > len(l.src) || r.Pos > r.End {
		return ""
	}

	return string(l.src[r.Pos:r.End])
}

func skipped(n sitter.Node) bool {
	switch n.Type() {
	case tsComment, tsHashBang:
		return true
	default:
		return false
	}
}

// children lowers the named children of n in source order.
func (l *lowerer) children(n sitter.Node, inType bool) []ast.Node {
	count := n.NamedChildCount()
	if count == 0 {
		return nil
	}

	out := make([]ast.Node, 0, count)

	for idx := uint32(0); idx < count; idx++ {
		child := n.NamedChild(idx)
		if child.IsNull() || skipped(child) {
			continue
		}

		if idx+1 < count {
			if node := l.exportedImportEquals(child, n.NamedChild(idx+1)); node != nil {
				out = append(out, node)
				idx++

				continue
			}
		}

		childInType := inType
		if typedTail[n.Type()] && idx > 0 {
			childInType = true
		}

		out = append(out, l.lower(child, childInType, n.Type()))
	}

	return out
}

func (l *lowerer) lower(n sitter.Node, inType bool, parent string) ast.Node {
	kind := n.Type()
	if typeContexts[kind] {
		inType = true
	}

	switch kind {
	case tsIdentifier:
		return ast.NewIdentifier(l.text(n), l.rng(n))
	case tsString:
		return l.stringLiteral(n)
	case tsImport:
		return ast.NewImportKeyword(l.rng(n))
	case tsCallExpression:
		if node := l.callExpression(n, inType, parent); node != nil {
			return node
		}
	case tsImportStatement:
		if node := l.importStatement(n, inType); node != nil {
			return node
		}
	case tsExportStatement:
		if node := l.exportStatement(n, inType); node != nil {
			return node
		}
	case tsModule, tsInternalModule:
		if node := l.moduleDeclaration(n, inType); node != nil {
			return node
		}
	}

	return ast.NewGeneric(kind, l.rng(n), l.children(n, inType))
}

func (l *lowerer) stringLiteral(n sitter.Node) *ast.StringLiteral {
	value, quote := unquote(l.text(n))

	return ast.NewStringLiteral(value, quote, l.rng(n))
}

// callExpression handles plain calls and import calls in type position.
// Tagged templates, whose arguments are a template string, stay generic.
func (l *lowerer) callExpression(n sitter.Node, inType bool, parent string) ast.Node {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")

	if fn.IsNull() || args.IsNull() || args.Type() != tsArguments {
		return nil
	}

	var typeArgs ast.Node
	if ta := n.ChildByFieldName("type_arguments"); !ta.IsNull() {
		typeArgs = l.lower(ta, true, n.Type())
	}

	if inType && fn.Type() == tsImport {
		return l.importType(args, typeArgs, parent == tsTypeQuery, l.rng(n))
	}

	return ast.NewCallExpression(l.lower(fn, inType, n.Type()), typeArgs, l.children(args, inType), l.rng(n))
}

// importType lowers `import("m")` in a type. Only a single string argument
// yields an ImportType.
func (l *lowerer) importType(args sitter.Node, typeArgs ast.Node, isTypeOf bool, rng ast.Range) ast.Node {
	if typeArgs != nil || args.NamedChildCount() != 1 {
		return nil
	}

	arg := args.NamedChild(0)
	if arg.Type() != tsString {
		return nil
	}

	lit := l.stringLiteral(arg)

	return ast.NewImportType(ast.NewLiteralType(lit, lit.Range()), nil, nil, isTypeOf, rng)
}

func (l *lowerer) importStatement(n sitter.Node, inType bool) ast.Node {
	typeOnly := hasToken(n, "type")

	if clause := firstNamed(n, tsImportRequireClause); !clause.IsNull() {
		return l.importEquals(n, clause, typeOnly)
	}

	source := n.ChildByFieldName("source")
	if source.IsNull() || source.Type() != tsString {
		return nil
	}

	var importClause, attributes ast.Node

	if c := firstNamed(n, tsImportClause); !c.IsNull() {
		importClause = l.lower(c, inType, tsImportStatement)
	}

	if a := firstNamed(n, tsImportAttribute); !a.IsNull() {
		attributes = l.lower(a, inType, tsImportStatement)
	}

	return ast.NewImportDeclaration(importClause, l.stringLiteral(source), attributes, typeOnly, l.rng(n))
}

// importEquals lowers `import x = require("m")`. The external module
// reference spans from the require keyword to the closing parenthesis.
func (l *lowerer) importEquals(stmt, clause sitter.Node, typeOnly bool) ast.Node {
	name := firstNamed(clause, tsIdentifier)
	source := firstNamed(clause, tsString)

	if name.IsNull() || source.IsNull() {
		return nil
	}

	refRange := l.rng(source)

	for idx := range clause.ChildCount() {
		child := clause.Child(idx)

		switch child.Type() {
		case "require":
			refRange.Pos = safeconv.MustUintToInt(child.StartByte())
		case ")":
			refRange.End = safeconv.MustUintToInt(child.EndByte())
		}
	}

	ref := ast.NewExternalModuleReference(l.stringLiteral(source), refRange)

	return ast.NewImportEqualsDeclaration(ast.NewIdentifier(l.text(name), l.rng(name)), ref, typeOnly, l.rng(stmt))
}

// exportStatement lowers re-exports. Exports without a from clause stay
// generic.
func (l *lowerer) exportStatement(n sitter.Node, inType bool) ast.Node {
	if clause := firstNamed(n, tsImportRequireClause); !clause.IsNull() {
		return l.importEquals(n, clause, hasToken(n, "type"))
	}

	source := n.ChildByFieldName("source")
	if source.IsNull() || source.Type() != tsString {
		return nil
	}

	var exportClause, attributes ast.Node

	if c := firstNamed(n, tsExportClause); !c.IsNull() {
		exportClause = l.lower(c, inType, tsExportStatement)
	} else if c := firstNamed(n, tsNamespaceExport); !c.IsNull() {
		exportClause = l.lower(c, inType, tsExportStatement)
	}

	if a := firstNamed(n, tsImportAttribute); !a.IsNull() {
		attributes = l.lower(a, inType, tsExportStatement)
	}

	return ast.NewExportDeclaration(exportClause, l.stringLiteral(source), attributes, hasToken(n, "type"), l.rng(n))
}

// exportedImportEquals lowers `export import x = require("m")`. The
// typescript grammar recovers it as an export of the alias `x = require`
// missing its semicolon, followed by a statement holding `("m")`; the pair
// becomes one declaration spanning both statements.
func (l *lowerer) exportedImportEquals(stmt, next sitter.Node) ast.Node {
	if stmt.Type() != tsExportStatement || next.Type() != tsExpressionStatement {
		return nil
	}

	alias := firstNamed(stmt, tsImportAlias)
	if alias.IsNull() || alias.NamedChildCount() != 2 { //nolint:mnd // name and target
		return nil
	}

	name, target := alias.NamedChild(0), alias.NamedChild(1)
	if name.Type() != tsIdentifier || target.Type() != tsIdentifier || l.text(target) != "require" {
		return nil
	}

	if next.NamedChildCount() != 1 {
		return nil
	}

	paren := next.NamedChild(0)
	if paren.Type() != tsParenthesized || paren.NamedChildCount() != 1 {
		return nil
	}

	source := paren.NamedChild(0)
	if source.Type() != tsString {
		return nil
	}

	refRange := ast.Range{Pos: l.rng(target).Pos, End: l.rng(paren).End}
	ref := ast.NewExternalModuleReference(l.stringLiteral(source), refRange)
	declRange := ast.Range{Pos: l.rng(stmt).Pos, End: l.rng(next).End}

	return ast.NewImportEqualsDeclaration(ast.NewIdentifier(l.text(name), l.rng(name)), ref, hasToken(stmt, "type"), declRange)
}

func (l *lowerer) moduleDeclaration(n sitter.Node, inType bool) ast.Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode.IsNull() {
		return nil
	}

	var body ast.Node
	if b := n.ChildByFieldName("body"); !b.IsNull() {
		body = l.lower(b, inType, n.Type())
	}

	return ast.NewModuleDeclaration(l.lower(nameNode, inType, n.Type()), body, l.rng(n))
}

func firstNamed(n sitter.Node, kind string) sitter.Node {
	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == kind {
			return child
		}
	}

	return sitter.Node{}
}

// hasToken reports whether n has a direct anonymous child spelled token.
func hasToken(n sitter.Node, token string) bool {
	for idx := range n.ChildCount() {
		child := n.Child(idx)
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}

	return false
}
