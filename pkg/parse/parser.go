// Package parse turns JavaScript and TypeScript source into the immutable
// syntax tree of package ast, using tree-sitter grammars.
package parse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/ast"
)

var (
	// ErrUnsupportedLanguage is returned for files that are neither
	// JavaScript nor TypeScript.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrNoRootNode is returned when tree-sitter yields an empty tree.
	ErrNoRootNode = errors.New("no root node")

	errLanguageNotAvailable = errors.New("tree-sitter language not available")
	errPoolType             = errors.New("parser pool returned unexpected type")
)

// Parser parses source files. It is safe for concurrent use; tree-sitter
// parsers are pooled per grammar and created on first use.
type Parser struct {
	grammars map[string]*grammar
}

// NewParser creates a Parser for every bundled grammar.
func NewParser() *Parser {
	p := &Parser{grammars: make(map[string]*grammar, len(languageFuncs))}

	for name := range languageFuncs {
		p.grammars[name] = &grammar{name: name}
	}

	return p
}

// Parse parses content as the language implied by filename and lowers the
// result. Syntax errors do not fail the parse: erroneous regions become
// generic nodes and print back unchanged.
func (p *Parser) Parse(ctx context.Context, filename string, content []byte) (*ast.SourceFile, error) {
	lang := DetectLanguage(filename, content)

	g, ok := p.grammars[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}

	return g.parse(ctx, filename, content)
}

// grammar defers tree-sitter language initialization until the first parse.
type grammar struct {
	name    string
	once    sync.Once
	initErr error
	pool    sync.Pool
}

func (g *grammar) init() {
	g.once.Do(func() {
		var lang *sitter.Language

		func() {
			defer func() {
				_ = recover() //nolint:errcheck // recover() returns any, not error
			}()

			lang = GetLanguage(g.name)
		}()

		if lang == nil {
			g.initErr = fmt.Errorf("%w: %s", errLanguageNotAvailable, g.name)

			return
		}

		g.pool = sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		}
	})
}

func (g *grammar) parse(ctx context.Context, filename string, content []byte) (*ast.SourceFile, error) {
	g.init()

	if g.initErr != nil {
		return nil, g.initErr
	}

	tsParser, ok := g.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer g.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, ErrNoRootNode
	}

	l := lowerer{src: content}

	return &ast.SourceFile{
		FileName:          filename,
		Language:          g.name,
		Text:              content,
		Statements:        l.children(root, false),
		IsDeclarationFile: IsDeclarationFile(filename),
	}, nil
}
