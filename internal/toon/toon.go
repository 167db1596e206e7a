// Package toon implements TOON (Token-Oriented Object Notation) encoding
// of coverage results.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/apicover/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Coverage into TOON format. Implemented symbols are
// only tabulated when withImplemented is set.
func Encode(cov *model.Coverage, withImplemented bool) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("missing: %d", len(cov.Missing)))
	parts = append(parts, fmt.Sprintf("implemented: %d", len(cov.Implemented)))
	parts = append(parts, symbolTable("missing", cov.Missing))
	if withImplemented {
		parts = append(parts, symbolTable("implemented", cov.Implemented))
	}

	return strings.Join(parts, "\n")
}

// symbolTable lays out symbols with one column per attribute key, name
// first, remaining keys in first-seen order. Absent attributes are empty.
func symbolTable(name string, syms []model.Symbol) string {
	columns := []string{"name"}
	seen := map[string]struct{}{"name": {}}
	for i := range syms {
		for _, a := range syms[i].Attrs {
			if _, ok := seen[a.Key]; ok {
				continue
			}
			seen[a.Key] = struct{}{}
			columns = append(columns, a.Key)
		}
	}

	rows := make([][]string, 0, len(syms))
	for i := range syms {
		s := &syms[i]
		row := make([]string, len(columns))
		row[0] = s.Name
		for j, col := range columns[1:] {
			row[j+1], _ = s.Attr(col)
		}
		rows = append(rows, row)
	}
	return formatTabular(name, columns, rows)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
