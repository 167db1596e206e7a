// Package model defines core data structures for apicover.
package model

import (
	"sort"
	"strings"
)

// SymbolKind is the element tag a symbol was read from.
type SymbolKind string

const (
	Function SymbolKind = "function"
	Macro    SymbolKind = "macro"
	Enum     SymbolKind = "enum"
)

// Attr is a single attribute of a catalog element.
type Attr struct {
	Key   string
	Value string
}

// Symbol is one entry of an API catalog.
type Symbol struct {
	Kind  SymbolKind
	Name  string
	Attrs []Attr // Document order, includes name
}

// Attr returns the value of the attribute key and whether it was present.
func (s Symbol) Attr(key string) (string, bool) {
	for _, a := range s.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Catalog is the parsed API descriptor.
type Catalog struct {
	Functions []Symbol
	// Macros and Enums are not used for matching.
	Macros []Symbol
	Enums  []Symbol
}

// Coverage partitions the considered functions.
type Coverage struct {
	Implemented []Symbol
	Missing     []Symbol
}

// Total returns the number of symbols considered.
func (c *Coverage) Total() int {
	return len(c.Implemented) + len(c.Missing)
}

// Percent returns the implemented share in the range [0, 100].
// An empty coverage reports 0.
func (c *Coverage) Percent() float64 {
	if c.Total() == 0 {
		return 0
	}
	return 100 * float64(len(c.Implemented)) / float64(c.Total())
}

// Sort orders both sets by name. Duplicates keep their relative order.
func (c *Coverage) Sort() {
	sortByName(c.Implemented)
	sortByName(c.Missing)
}

func sortByName(syms []Symbol) {
	sort.SliceStable(syms, func(i, j int) bool {
		return strings.Compare(syms[i].Name, syms[j].Name) < 0
	})
}
