package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"tsdoclint/internal/extractor"
)

// Dumps the raw Tree-sitter parse tree for one file: node types, field
// names, positions. Useful when the walker misses a declaration shape.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: debug <file>")
		os.Exit(1)
	}
	path := os.Args[1]

	var lang *sitter.Language
	switch extractor.LanguageName(path) {
	case "typescript":
		lang = typescript.GetLanguage()
	case "tsx":
		lang = tsx.GetLanguage()
	case "javascript":
		lang = javascript.GetLanguage()
	default:
		fmt.Fprintf(os.Stderr, "Unsupported file type: %s\n", path)
		os.Exit(1)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}
	defer tree.Close()

	dump(tree.RootNode(), source, 0, "")
}

func dump(n *sitter.Node, source []byte, depth int, field string) {
	if n == nil {
		return
	}

	label := n.Type()
	if field != "" {
		label = field + ": " + label
	}
	start := n.StartPoint()
	end := n.EndPoint()
	pos := fmt.Sprintf("[%d:%d-%d:%d]", start.Row+1, start.Column, end.Row+1, end.Column)

	indent := strings.Repeat("  ", depth)
	if n.ChildCount() == 0 {
		content := n.Content(source)
		if len(content) > 60 {
			content = content[:60] + "..."
		}
		fmt.Printf("%s%s %s %q\n", indent, label, pos, content)
	} else {
		fmt.Printf("%s%s %s\n", indent, label, pos)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		dump(n.Child(i), source, depth+1, n.FieldNameForChild(i))
	}
}
