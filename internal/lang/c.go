package lang

import "github.com/smacker/go-tree-sitter/c"

func init() {
	Languages["c"] = &Language{
		Name:       "c",
		Extensions: []string{".c", ".h"},
		lang:       c.GetLanguage(),
		IdentTypes: []string{"identifier", "field_identifier", "type_identifier"},
	}
}
