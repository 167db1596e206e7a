package lang

import "github.com/smacker/go-tree-sitter/golang"

func init() {
	Languages["go"] = &Language{
		Name:       "go",
		Extensions: []string{".go"},
		lang:       golang.GetLanguage(),
		IdentTypes: []string{"identifier", "field_identifier", "type_identifier", "package_identifier"},
	}
}
