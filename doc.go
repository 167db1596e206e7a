package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/phobologic/apicover/internal/model"
)

const (
	sentinelStart = "<!-- apicover:start -->"
	sentinelEnd   = "<!-- apicover:end -->"
)

// writeDocSection writes (or updates) a coverage summary section in the
// markdown file at path. The file is created if it does not exist.
func writeDocSection(path string, cov *model.Coverage, prefix string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	updated := applySection(string(existing), generateSection(cov, prefix))

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// generateSection returns the sentinel-wrapped coverage summary.
func generateSection(cov *model.Coverage, prefix string) string {
	scope := "API functions"
	if mixedKinds(cov) {
		scope = "API symbols"
	}
	if prefix != "" {
		scope = fmt.Sprintf("%s starting with `%s`", scope, prefix)
	}

	var b strings.Builder
	b.WriteString("## API coverage\n\n")
	fmt.Fprintf(&b, "%d of %d %s are implemented (%.1f%%), %d missing.\n",
		len(cov.Implemented), cov.Total(), scope, cov.Percent(), len(cov.Missing))
	b.WriteString("\n_Generated by apicover._")

	return sentinelStart + "\n" + b.String() + "\n" + sentinelEnd
}

// mixedKinds reports whether cov holds anything other than functions.
func mixedKinds(cov *model.Coverage) bool {
	for _, set := range [][]model.Symbol{cov.Implemented, cov.Missing} {
		for _, s := range set {
			if s.Kind == model.Macro || s.Kind == model.Enum {
				return true
			}
		}
	}
	return false
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
