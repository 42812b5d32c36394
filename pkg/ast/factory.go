package ast

// Constructors for parsed nodes. The front end is the only producer of ranges;
// code that rewrites a tree goes through the Update functions below.

// NewCallExpression creates a call expression.
func NewCallExpression(expr, typeArguments Node, arguments []Node, rng Range) *CallExpression {
	return &CallExpression{Expression: expr, TypeArguments: typeArguments, Arguments: arguments, rng: rng}
}

// NewImportEqualsDeclaration creates an import-equals declaration.
func NewImportEqualsDeclaration(name, moduleReference Node, isTypeOnly bool, rng Range) *ImportEqualsDeclaration {
	return &ImportEqualsDeclaration{Name: name, ModuleReference: moduleReference, IsTypeOnly: isTypeOnly, rng: rng}
}

// NewExternalModuleReference creates an external module reference.
func NewExternalModuleReference(expr Node, rng Range) *ExternalModuleReference {
	return &ExternalModuleReference{Expression: expr, rng: rng}
}

// NewImportType creates an import type node.
func NewImportType(argument, qualifier, typeArguments Node, isTypeOf bool, rng Range) *ImportType {
	return &ImportType{Argument: argument, Qualifier: qualifier, TypeArguments: typeArguments, IsTypeOf: isTypeOf, rng: rng}
}

// NewLiteralType creates a literal type node.
func NewLiteralType(literal Node, rng Range) *LiteralType {
	return &LiteralType{Literal: literal, rng: rng}
}

// NewImportDeclaration creates an import declaration.
func NewImportDeclaration(importClause, moduleSpecifier, attributes Node, isTypeOnly bool, rng Range) *ImportDeclaration {
	return &ImportDeclaration{
		ImportClause:    importClause,
		ModuleSpecifier: moduleSpecifier,
		Attributes:      attributes,
		IsTypeOnly:      isTypeOnly,
		rng:             rng,
	}
}

// NewExportDeclaration creates an export declaration.
func NewExportDeclaration(exportClause, moduleSpecifier, attributes Node, isTypeOnly bool, rng Range) *ExportDeclaration {
	return &ExportDeclaration{
		ExportClause:    exportClause,
		ModuleSpecifier: moduleSpecifier,
		Attributes:      attributes,
		IsTypeOnly:      isTypeOnly,
		rng:             rng,
	}
}

// NewModuleDeclaration creates a module declaration.
func NewModuleDeclaration(name, body Node, rng Range) *ModuleDeclaration {
	return &ModuleDeclaration{Name: name, Body: body, rng: rng}
}

// Update functions. Each returns node itself when every argument is identical
// to the current field, so callers can compare results by identity.

// UpdateSourceFile returns sf with statements replaced.
func UpdateSourceFile(sf *SourceFile, statements []Node) *SourceFile {
	if sameNodes(sf.Statements, statements) {
		return sf
	}

	updated := *sf
	updated.Statements = statements

	return &updated
}

// UpdateGeneric returns node with children replaced.
func UpdateGeneric(node *Generic, children []Node) *Generic {
	if sameNodes(node.Children, children) {
		return node
	}

	return &Generic{kind: node.kind, rng: node.rng, Children: children}
}

// UpdateCallExpression returns node with its callee, type arguments and arguments replaced.
func UpdateCallExpression(node *CallExpression, expr, typeArguments Node, arguments []Node) *CallExpression {
	if node.Expression == expr && node.TypeArguments == typeArguments && sameNodes(node.Arguments, arguments) {
		return node
	}

	return &CallExpression{Expression: expr, TypeArguments: typeArguments, Arguments: arguments, rng: node.rng}
}

// UpdateImportEqualsDeclaration returns node with name and module reference replaced.
func UpdateImportEqualsDeclaration(node *ImportEqualsDeclaration, name, moduleReference Node) *ImportEqualsDeclaration {
	if node.Name == name && node.ModuleReference == moduleReference {
		return node
	}

	return &ImportEqualsDeclaration{Name: name, ModuleReference: moduleReference, IsTypeOnly: node.IsTypeOnly, rng: node.rng}
}

// UpdateExternalModuleReference returns node with its expression replaced.
func UpdateExternalModuleReference(node *ExternalModuleReference, expr Node) *ExternalModuleReference {
	if node.Expression == expr {
		return node
	}

	return &ExternalModuleReference{Expression: expr, rng: node.rng}
}

// UpdateImportType returns node with the given fields.
func UpdateImportType(node *ImportType, argument, qualifier, typeArguments Node, isTypeOf bool) *ImportType {
	if node.Argument == argument && node.Qualifier == qualifier &&
		node.TypeArguments == typeArguments && node.IsTypeOf == isTypeOf {
		return node
	}

	return &ImportType{
		Argument:      argument,
		Qualifier:     qualifier,
		TypeArguments: typeArguments,
		IsTypeOf:      isTypeOf,
		rng:           node.rng,
	}
}

// UpdateLiteralType returns node with its literal replaced.
func UpdateLiteralType(node *LiteralType, literal Node) *LiteralType {
	if node.Literal == literal {
		return node
	}

	return &LiteralType{Literal: literal, rng: node.rng}
}

// UpdateImportDeclaration returns node with clause, specifier and attributes replaced.
func UpdateImportDeclaration(node *ImportDeclaration, importClause, moduleSpecifier, attributes Node) *ImportDeclaration {
	if node.ImportClause == importClause && node.ModuleSpecifier == moduleSpecifier && node.Attributes == attributes {
		return node
	}

	return &ImportDeclaration{
		ImportClause:    importClause,
		ModuleSpecifier: moduleSpecifier,
		Attributes:      attributes,
		IsTypeOnly:      node.IsTypeOnly,
		rng:             node.rng,
	}
}

// UpdateExportDeclaration returns node with clause, specifier and attributes replaced.
func UpdateExportDeclaration(node *ExportDeclaration, exportClause, moduleSpecifier, attributes Node) *ExportDeclaration {
	if node.ExportClause == exportClause && node.ModuleSpecifier == moduleSpecifier && node.Attributes == attributes {
		return node
	}

	return &ExportDeclaration{
		ExportClause:    exportClause,
		ModuleSpecifier: moduleSpecifier,
		Attributes:      attributes,
		IsTypeOnly:      node.IsTypeOnly,
		rng:             node.rng,
	}
}

// UpdateModuleDeclaration returns node with name and body replaced.
func UpdateModuleDeclaration(node *ModuleDeclaration, name, body Node) *ModuleDeclaration {
	if node.Name == name && node.Body == body {
		return node
	}

	return &ModuleDeclaration{Name: name, Body: body, rng: node.rng}
}

func sameNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}

	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}

	return true
}
