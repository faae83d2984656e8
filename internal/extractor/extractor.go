package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Extractor parses TypeScript and JavaScript files with Tree-sitter and
// collects raw declaration nodes with their attached documentation
// comments. One Extractor is not safe for concurrent use; the indexer gives
// each worker its own.
type Extractor struct {
	parser *sitter.Parser
}

// New creates an Extractor. The grammar is chosen per file from its
// extension.
func New() *Extractor {
	return &Extractor{parser: sitter.NewParser()}
}

// LanguageName maps a file path to the grammar it parses with, or "" for
// unsupported extensions.
func LanguageName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "tsx"
	case ".js", ".mjs", ".cjs", ".jsx":
		return "javascript"
	}
	return ""
}

func languageFor(name string) *sitter.Language {
	switch name {
	case "typescript":
		return typescript.GetLanguage()
	case "tsx":
		return tsx.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	}
	return nil
}

// Extract reads and parses one source file.
func (e *Extractor) Extract(filePath string) (FileSource, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return FileSource{File: filePath}, fmt.Errorf("reading file: %w", err)
	}
	return e.ExtractSource(filePath, content)
}

// ExtractSource parses the given content as if it lived at filePath. Parse
// errors do not abort extraction; they are recorded on the result and the
// walk continues over whatever the parser recovered.
func (e *Extractor) ExtractSource(filePath string, content []byte) (FileSource, error) {
	src := FileSource{File: filePath, Language: LanguageName(filePath)}

	lang := languageFor(src.Language)
	if lang == nil {
		return src, fmt.Errorf("unsupported file type: %s", filePath)
	}
	e.parser.SetLanguage(lang)

	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return src, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	src.Lines = bytes.Count(content, []byte("\n")) + 1
	collectParseErrors(root, content, &src)

	w := &walker{source: content}
	src.ModuleDoc = w.fileModuleDoc(root)
	src.Nodes = w.statements(root, false)
	src.Imports = w.imports(root)
	return src, nil
}

// collectParseErrors records ERROR and MISSING nodes without failing the
// extraction. Subtrees without errors are skipped wholesale.
func collectParseErrors(node *sitter.Node, source []byte, src *FileSource) {
	if node == nil || !node.HasError() {
		return
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		snippet := node.Content(source)
		if len(snippet) > 40 {
			snippet = snippet[:40]
		}
		src.ParseErrors = append(src.ParseErrors,
			fmt.Sprintf("line %d: syntax error near %q", node.StartPoint().Row+1, snippet))
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectParseErrors(node.Child(i), source, src)
	}
}
