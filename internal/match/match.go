// Package match classifies API symbols as implemented or missing by looking
// for their names in source files.
package match

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/phobologic/apicover/internal/discover"
	"github.com/phobologic/apicover/internal/lang"
	"github.com/phobologic/apicover/internal/model"
)

// Source reads the content of a discovered file.
type Source interface {
	ReadFile(path string) ([]byte, error)
}

// Matcher reports whether name occurs in the content of the file at path.
type Matcher interface {
	Match(name, path string, content []byte) bool
}

// Substring matches any literal occurrence of the name, including inside
// longer identifiers.
type Substring struct{}

func (Substring) Match(name, _ string, content []byte) bool {
	return bytes.Contains(content, []byte(name))
}

// Identifier matches only whole identifier tokens, using the tree-sitter
// grammar registered for the file's extension. Files without a grammar, or
// that fail to parse, fall back to a substring test.
type Identifier struct {
	idents map[string]map[string]struct{}
}

// NewIdentifier returns an Identifier matcher with an empty token index.
// The index lives as long as the matcher.
func NewIdentifier() *Identifier {
	return &Identifier{idents: make(map[string]map[string]struct{})}
}

func (m *Identifier) Match(name, path string, content []byte) bool {
	set, ok := m.idents[path]
	if !ok {
		set = m.index(path, content)
		m.idents[path] = set
	}
	if set == nil {
		return bytes.Contains(content, []byte(name))
	}
	_, ok = set[name]
	return ok
}

func (m *Identifier) index(path string, content []byte) map[string]struct{} {
	l := lang.ForExtension(filepath.Ext(path))
	if l == nil {
		return nil
	}
	set, err := l.Identifiers(context.Background(), content)
	if err != nil {
		return nil
	}
	return set
}

// SysRef matches names referenced through the raw bindings module, as in
// sys::virConnectOpen(...). Only the first sys:: reference on a line counts.
type SysRef struct {
	refs map[string]map[string]struct{}
}

// NewSysRef returns a SysRef matcher with an empty reference index.
func NewSysRef() *SysRef {
	return &SysRef{refs: make(map[string]map[string]struct{})}
}

func (m *SysRef) Match(name, path string, content []byte) bool {
	set, ok := m.refs[path]
	if !ok {
		set = sysRefs(content)
		m.refs[path] = set
	}
	_, ok = set[name]
	return ok
}

var sysMarker = []byte("sys::")

func sysRefs(content []byte) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range bytes.Split(content, []byte("\n")) {
		i := bytes.Index(line, sysMarker)
		if i < 0 {
			continue
		}
		rest := line[i+len(sysMarker):]
		n := 0
		for n < len(rest) && isSymbolByte(rest[n]) {
			n++
		}
		if n > 0 {
			set[string(rest[:n])] = struct{}{}
		}
	}
	return set
}

func isSymbolByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Mode names accepted by ParseMode.
const (
	ModeSubstring = "substring"
	ModeIdent     = "ident"
	ModeSys       = "sys"
)

// ParseMode returns the matcher for a mode name.
func ParseMode(mode string) (Matcher, error) {
	switch mode {
	case "", ModeSubstring:
		return Substring{}, nil
	case ModeIdent:
		return NewIdentifier(), nil
	case ModeSys:
		return NewSysRef(), nil
	default:
		return nil, fmt.Errorf("unknown match mode %q (want %s, %s or %s)", mode, ModeSubstring, ModeIdent, ModeSys)
	}
}

// Options control Run.
type Options struct {
	// SkipUnreadable logs unreadable files and treats them as not
	// containing the symbol instead of aborting.
	SkipUnreadable bool
	Logger         zerolog.Logger
}

// Run classifies each symbol. For every symbol the files are read in order
// until one matches; a symbol without a match is missing. The returned sets
// are sorted by name.
func Run(symbols []model.Symbol, files []discover.FileEntry, src Source, m Matcher, opts Options) (*model.Coverage, error) {
	cov := &model.Coverage{}
	warned := make(map[string]bool)

	for _, sym := range symbols {
		found := false
		for _, f := range files {
			content, err := src.ReadFile(f.Path)
			if err != nil {
				if !opts.SkipUnreadable {
					return nil, err
				}
				if !warned[f.Path] {
					warned[f.Path] = true
					opts.Logger.Warn().Err(err).Str("file", f.Path).Msg("skipping unreadable source file")
				}
				continue
			}
			if m.Match(sym.Name, f.Path, content) {
				found = true
				break
			}
		}
		if found {
			cov.Implemented = append(cov.Implemented, sym)
		} else {
			cov.Missing = append(cov.Missing, sym)
		}
	}

	cov.Sort()
	return cov, nil
}

