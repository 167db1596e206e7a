// Package catalog loads API descriptor documents such as libvirt-api.xml.
package catalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phobologic/apicover/internal/model"
)

// LoadError reports a descriptor that is missing, unreadable or malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loading catalog: %v", e.Err)
	}
	return fmt.Sprintf("loading catalog %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var kinds = map[string]model.SymbolKind{
	"function": model.Function,
	"macro":    model.Macro,
	"enum":     model.Enum,
}

// Load reads and parses the descriptor at path.
func Load(path string) (*model.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	cat, err := Parse(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return cat, nil
}

// Parse decodes a descriptor. Every function, macro and enum element is
// collected regardless of nesting depth; other elements are ignored.
// The document must have exactly one root element and no text outside it.
func Parse(r io.Reader) (*model.Catalog, error) {
	dec := xml.NewDecoder(r)
	cat := &model.Catalog{}
	depth := 0
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Err: err}
		}

		switch t := tok.(type) {
		case xml.EndElement:
			depth--
			continue
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				line, _ := dec.InputPos()
				return nil, &LoadError{Err: fmt.Errorf("line %d: text outside the document element", line)}
			}
			continue
		case xml.StartElement:
			if depth == 0 && sawRoot {
				line, _ := dec.InputPos()
				return nil, &LoadError{Err: fmt.Errorf("line %d: junk after document element", line)}
			}
			depth++
			sawRoot = true
			if err := collect(cat, t, dec); err != nil {
				return nil, err
			}
		}
	}

	if !sawRoot {
		return nil, &LoadError{Err: errors.New("empty document")}
	}
	return cat, nil
}

func collect(cat *model.Catalog, start xml.StartElement, dec *xml.Decoder) error {
	kind, ok := kinds[start.Name.Local]
	if !ok {
		return nil
	}

	sym := model.Symbol{Kind: kind}
	for _, a := range start.Attr {
		key := a.Name.Local
		if a.Name.Space != "" {
			key = "{" + a.Name.Space + "}" + key
		}
		sym.Attrs = append(sym.Attrs, model.Attr{Key: key, Value: a.Value})
		if key == "name" {
			sym.Name = a.Value
		}
	}

	switch kind {
	case model.Function:
		if sym.Name == "" {
			line, _ := dec.InputPos()
			return &LoadError{Err: fmt.Errorf("line %d: function element without a name", line)}
		}
		cat.Functions = append(cat.Functions, sym)
	case model.Macro:
		cat.Macros = append(cat.Macros, sym)
	case model.Enum:
		cat.Enums = append(cat.Enums, sym)
	}
	return nil
}

// LoadAll loads every descriptor in paths and merges them in order. A
// symbol already seen under the same kind and name is dropped.
func LoadAll(paths []string) (*model.Catalog, error) {
	if len(paths) == 0 {
		return nil, &LoadError{Err: errors.New("no catalog given")}
	}

	merged := &model.Catalog{}
	seen := make(map[model.SymbolKind]map[string]struct{})
	add := func(dst *[]model.Symbol, syms []model.Symbol, first bool) {
		for _, s := range syms {
			names := seen[s.Kind]
			if names == nil {
				names = make(map[string]struct{})
				seen[s.Kind] = names
			}
			if _, dup := names[s.Name]; dup && !first {
				continue
			}
			names[s.Name] = struct{}{}
			*dst = append(*dst, s)
		}
	}

	for i, path := range paths {
		cat, err := Load(path)
		if err != nil {
			return nil, err
		}
		// Duplicates inside the first document are kept as they are.
		add(&merged.Functions, cat.Functions, i == 0)
		add(&merged.Macros, cat.Macros, i == 0)
		add(&merged.Enums, cat.Enums, i == 0)
	}
	return merged, nil
}

// ParseKinds maps kind names to symbol kinds. Empty input selects functions.
func ParseKinds(names []string) ([]model.SymbolKind, error) {
	if len(names) == 0 {
		return []model.SymbolKind{model.Function}, nil
	}
	var out []model.SymbolKind
	dup := make(map[model.SymbolKind]bool)
	for _, n := range names {
		kind, ok := kinds[strings.TrimSpace(n)]
		if !ok {
			return nil, fmt.Errorf("unknown symbol kind %q (want function, macro or enum)", n)
		}
		if !dup[kind] {
			dup[kind] = true
			out = append(out, kind)
		}
	}
	return out, nil
}

// Select returns the symbols of the requested kinds, in kind order.
// Enums named *_LAST are sentinels and never selected.
func Select(cat *model.Catalog, want []model.SymbolKind) []model.Symbol {
	var out []model.Symbol
	for _, k := range want {
		switch k {
		case model.Function:
			out = append(out, cat.Functions...)
		case model.Macro:
			out = append(out, cat.Macros...)
		case model.Enum:
			for _, e := range cat.Enums {
				if !strings.HasSuffix(e.Name, "_LAST") {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// Exclude drops symbols whose name is in names.
func Exclude(symbols []model.Symbol, names []string) []model.Symbol {
	if len(names) == 0 {
		return symbols
	}
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	var kept []model.Symbol
	for _, s := range symbols {
		if _, ok := skip[s.Name]; !ok {
			kept = append(kept, s)
		}
	}
	return kept
}

// FilterPrefix returns the symbols whose name starts with prefix.
// An empty prefix keeps every symbol.
func FilterPrefix(symbols []model.Symbol, prefix string) []model.Symbol {
	if prefix == "" {
		return symbols
	}
	var kept []model.Symbol
	for _, s := range symbols {
		if strings.HasPrefix(s.Name, prefix) {
			kept = append(kept, s)
		}
	}
	return kept
}
