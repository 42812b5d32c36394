package ast

// Visitor maps a node to its replacement. Returning the argument unchanged
// keeps the node; returning nil removes it from a child list.
type Visitor func(Node) Node

// VisitEachChild applies visitor to every direct child of node and rebuilds
// node only if some child changed. Nodes without children are returned as is.
func VisitEachChild(node Node, visitor Visitor) Node {
	switch n := node.(type) {
	case *SourceFile:
		return UpdateSourceFile(n, visitNodes(n.Statements, visitor))
	case *Generic:
		return UpdateGeneric(n, visitNodes(n.Children, visitor))
	case *CallExpression:
		return UpdateCallExpression(n,
			visitNode(n.Expression, visitor),
			visitNode(n.TypeArguments, visitor),
			visitNodes(n.Arguments, visitor),
		)
	case *ImportEqualsDeclaration:
		return UpdateImportEqualsDeclaration(n,
			visitNode(n.Name, visitor),
			visitNode(n.ModuleReference, visitor),
		)
	case *ExternalModuleReference:
		return UpdateExternalModuleReference(n, visitNode(n.Expression, visitor))
	case *ImportType:
		return UpdateImportType(n,
			visitNode(n.Argument, visitor),
			visitNode(n.Qualifier, visitor),
			visitNode(n.TypeArguments, visitor),
			n.IsTypeOf,
		)
	case *LiteralType:
		return UpdateLiteralType(n, visitNode(n.Literal, visitor))
	case *ImportDeclaration:
		return UpdateImportDeclaration(n,
			visitNode(n.ImportClause, visitor),
			visitNode(n.ModuleSpecifier, visitor),
			visitNode(n.Attributes, visitor),
		)
	case *ExportDeclaration:
		return UpdateExportDeclaration(n,
			visitNode(n.ExportClause, visitor),
			visitNode(n.ModuleSpecifier, visitor),
			visitNode(n.Attributes, visitor),
		)
	case *ModuleDeclaration:
		return UpdateModuleDeclaration(n,
			visitNode(n.Name, visitor),
			visitNode(n.Body, visitor),
		)
	default:
		// Identifier, StringLiteral, ImportKeyword: leaves.
		return node
	}
}

func visitNode(node Node, visitor Visitor) Node {
	if node == nil {
		return nil
	}

	return visitor(node)
}

// visitNodes returns nodes itself when no element changed.
func visitNodes(nodes []Node, visitor Visitor) []Node {
	var out []Node

	for idx, child := range nodes {
		visited := visitor(child)

		if out == nil {
			if visited == child {
				continue
			}

			out = make([]Node, idx, len(nodes))
			copy(out, nodes[:idx])
		}

		if visited != nil {
			out = append(out, visited)
		}
	}

	if out == nil {
		return nodes
	}

	return out
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *SourceFile:
		return n.Statements
	case *Generic:
		return n.Children
	case *CallExpression:
		kids := nonNil(n.Expression, n.TypeArguments)

		return append(kids, n.Arguments...)
	case *ImportEqualsDeclaration:
		return nonNil(n.Name, n.ModuleReference)
	case *ExternalModuleReference:
		return nonNil(n.Expression)
	case *ImportType:
		return nonNil(n.Argument, n.Qualifier, n.TypeArguments)
	case *LiteralType:
		return nonNil(n.Literal)
	case *ImportDeclaration:
		return nonNil(n.ImportClause, n.ModuleSpecifier, n.Attributes)
	case *ExportDeclaration:
		return nonNil(n.ExportClause, n.ModuleSpecifier, n.Attributes)
	case *ModuleDeclaration:
		return nonNil(n.Name, n.Body)
	default:
		return nil
	}
}

func nonNil(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))

	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}

	return out
}

// Inspect traverses the tree rooted at node in pre-order. When fn returns
// false the children of the current node are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}
