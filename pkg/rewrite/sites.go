package rewrite

import "github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"

// matchSite tests node against the site shapes in precedence order and
// returns the literal holding its path.
func matchSite(node ast.Node) (SiteKind, *ast.StringLiteral, bool) {
	switch n := node.(type) {
	case *ast.CallExpression:
		if lit := dynamicCallPath(n); lit != nil {
			return KindDynamicCall, lit, true
		}
	case *ast.ExternalModuleReference:
		if lit, ok := n.Expression.(*ast.StringLiteral); ok {
			return KindExternalModuleReference, lit, true
		}
	case *ast.ImportType:
		if lit := importTypePath(n); lit != nil {
			return KindImportType, lit, true
		}
	case *ast.ImportDeclaration:
		if lit, ok := n.ModuleSpecifier.(*ast.StringLiteral); ok {
			return KindImportDeclaration, lit, true
		}
	case *ast.ExportDeclaration:
		if lit, ok := n.ModuleSpecifier.(*ast.StringLiteral); ok {
			return KindExportDeclaration, lit, true
		}
	case *ast.ModuleDeclaration:
		if lit, ok := n.Name.(*ast.StringLiteral); ok {
			return KindAmbientModule, lit, true
		}
	}

	return 0, nil, false
}

// dynamicCallPath matches import("m") and require("m") with exactly one
// string argument.
func dynamicCallPath(n *ast.CallExpression) *ast.StringLiteral {
	if len(n.Arguments) != 1 {
		return nil
	}

	lit, ok := n.Arguments[0].(*ast.StringLiteral)
	if !ok {
		return nil
	}

	switch callee := n.Expression.(type) {
	case *ast.ImportKeyword:
		return lit
	case *ast.Identifier:
		if callee.Text == "require" {
			return lit
		}
	}

	return nil
}

// importTypePath requires a non-empty literal, so import("") is left alone.
func importTypePath(n *ast.ImportType) *ast.StringLiteral {
	lt, ok := n.Argument.(*ast.LiteralType)
	if !ok {
		return nil
	}

	lit, ok := lt.Literal.(*ast.StringLiteral)
	if !ok || lit.Text == "" {
		return nil
	}

	return lit
}

// rebuild returns a copy of the matched site node with its path literal
// replaced by lit. Every other field is carried over by reference.
func rebuild(node ast.Node, lit *ast.StringLiteral) ast.Node {
	switch n := node.(type) {
	case *ast.CallExpression:
		return ast.UpdateCallExpression(n, n.Expression, n.TypeArguments, []ast.Node{lit})
	case *ast.ExternalModuleReference:
		return ast.UpdateExternalModuleReference(n, lit)
	case *ast.ImportType:
		lt, _ := n.Argument.(*ast.LiteralType) //nolint:errcheck // shape checked by matchSite

		return ast.UpdateImportType(n, ast.UpdateLiteralType(lt, lit), n.Qualifier, n.TypeArguments, n.IsTypeOf)
	case *ast.ImportDeclaration:
		return ast.UpdateImportDeclaration(n, n.ImportClause, lit, n.Attributes)
	case *ast.ExportDeclaration:
		return ast.UpdateExportDeclaration(n, n.ExportClause, lit, n.Attributes)
	case *ast.ModuleDeclaration:
		return ast.UpdateModuleDeclaration(n, lit, n.Body)
	default:
		return node
	}
}
