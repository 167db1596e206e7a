// Package report renders coverage results.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/phobologic/apicover/internal/model"
	"github.com/phobologic/apicover/internal/toon"
)

// Format names accepted by ParseFormat.
const (
	FormatText = "text"
	FormatTOON = "toon"
)

// ParseFormat validates a format name. The empty string means text.
func ParseFormat(name string) (string, error) {
	switch name {
	case "", FormatText:
		return FormatText, nil
	case FormatTOON:
		return FormatTOON, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want %s or %s)", name, FormatText, FormatTOON)
	}
}

// Options control Write.
type Options struct {
	Format          string
	ShowImplemented bool
}

// Write prints cov to w.
//
// The text format is a summary line, a "missing:" header and one attribute
// mapping per missing symbol. Implemented symbols are listed only with
// ShowImplemented.
func Write(w io.Writer, cov *model.Coverage, opts Options) error {
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	if format == FormatTOON {
		_, err := fmt.Fprintln(w, toon.Encode(cov, opts.ShowImplemented))
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "missing: %d, implemented: %d\n", len(cov.Missing), len(cov.Implemented))
	b.WriteString("missing:\n")
	for i := range cov.Missing {
		b.WriteString(FormatAttrs(cov.Missing[i]))
		b.WriteByte('\n')
	}
	if opts.ShowImplemented {
		b.WriteString("implemented:\n")
		for i := range cov.Implemented {
			b.WriteString(FormatAttrs(cov.Implemented[i]))
			b.WriteByte('\n')
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// FormatAttrs renders a symbol's attributes as a mapping literal in
// document order, e.g. {'name': 'virConnectOpen', 'file': 'libvirt-host'}.
func FormatAttrs(s model.Symbol) string {
	parts := make([]string, len(s.Attrs))
	for i, a := range s.Attrs {
		parts[i] = quote(a.Key) + ": " + quote(a.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// quote renders s as a single- or double-quoted literal with backslash
// escapes for the quote character, backslash and non-printable runes, so
// every attribute mapping stays on one line.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteRune(q)
	for _, r := range s {
		switch {
		case r == q || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(q)
	return b.String()
}
