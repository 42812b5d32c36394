package parse

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"

	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"
)

// Grammar names.
const (
	TypeScript = "typescript"
	TSX        = "tsx"
	JavaScript = "javascript"
)

var languageFuncs = map[string]func() unsafe.Pointer{
	TypeScript: typescript.GetLanguage,
	TSX:        tsx.GetLanguage,
	JavaScript: javascript.GetLanguage,
}

var extensionLanguages = map[string]string{
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".tsx": TSX,
	".js":  JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".jsx": JavaScript,
}

// enry reports linguist names.
var enryLanguages = map[string]string{
	"TypeScript": TypeScript,
	"TSX":        TSX,
	"JavaScript": JavaScript,
}

var declarationSuffixes = []string{".d.ts", ".d.mts", ".d.cts"}

var languageCache sync.Map

// GetLanguage returns the tree-sitter Language for the given grammar name, or
// nil if it is not one of the bundled grammars.
func GetLanguage(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

// Extensions returns the file extensions recognized without content sniffing,
// sorted.
func Extensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}

	slices.Sort(exts)

	return exts
}

// DetectLanguage picks the grammar for filename. Known extensions win; other
// names are classified by enry using the file content (shebang lines, for
// instance). The empty string means the file is not JavaScript or TypeScript.
func DetectLanguage(filename string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}

	return enryLanguages[enry.GetLanguage(filepath.Base(filename), content)]
}

// IsDeclarationFile reports whether filename names a type declaration file.
func IsDeclarationFile(filename string) bool {
	lower := strings.ToLower(filename)

	for _, suffix := range declarationSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	return false
}
