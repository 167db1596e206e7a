// Package lang provides a language registry mapping file extensions to
// tree-sitter grammars and the node types that count as identifiers.
package lang

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// IdentTypes lists the leaf node types whose text is an identifier.
	IdentTypes []string
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Parsers are not safe for concurrent use.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Identifiers parses source and returns the set of identifier tokens in it.
func (l *Language) Identifiers(ctx context.Context, source []byte) (map[string]struct{}, error) {
	idents := make(map[string]struct{})
	if len(source) == 0 {
		return idents, nil
	}

	parser := l.NewParser()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", l.Name, err)
	}
	defer tree.Close()

	types := make(map[string]struct{}, len(l.IdentTypes))
	for _, t := range l.IdentTypes {
		types[t] = struct{}{}
	}
	collect(tree.RootNode(), source, types, idents)
	return idents, nil
}

func collect(node *sitter.Node, source []byte, types, out map[string]struct{}) {
	if node.ChildCount() == 0 {
		if _, ok := types[node.Type()]; ok {
			out[NodeText(node, source)] = struct{}{}
		}
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collect(node.Child(i), source, types, out)
	}
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]*Language
var extensionOnce sync.Once

func getExtensionMap() map[string]*Language {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]*Language)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language for a file extension, or nil if unsupported.
func ForExtension(ext string) *Language {
	return getExtensionMap()[ext]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
