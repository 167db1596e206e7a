package lang

import "github.com/smacker/go-tree-sitter/rust"

func init() {
	Languages["rust"] = &Language{
		Name:       "rust",
		Extensions: []string{".rs"},
		lang:       rust.GetLanguage(),
		// Identifiers inside macro token trees are plain "identifier" leaves too.
		IdentTypes: []string{"identifier", "field_identifier", "type_identifier"},
	}
}
