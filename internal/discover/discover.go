// Package discover finds candidate implementation files in a source directory.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path string // Relative to the scanned root
	Ext  string
}

// ReadError reports a source file whose content could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading source %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Options control Files.
type Options struct {
	// RespectGitignore skips files matched by root/.gitignore.
	RespectGitignore bool
}

// Files lists the files directly inside root whose extension is one of exts.
// The scan is not recursive. A missing root yields no files and no error.
// Hidden files are skipped; symlinks are followed and kept when they point
// at a regular file.
func Files(root string, exts []string, opts Options) ([]FileEntry, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}

	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		extSet[NormalizeExt(e)] = struct{}{}
	}
	var gi *ignore.GitIgnore
	if opts.RespectGitignore {
		gi = loadGitignore(root)
	}

	var results []FileEntry
	for _, d := range entries {
		name := d.Name()
		if d.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		ext := filepath.Ext(name)
		if _, ok := extSet[ext]; !ok {
			continue
		}

		if d.Type()&os.ModeSymlink != 0 {
			fi, err := os.Stat(filepath.Join(root, name))
			if err != nil || !fi.Mode().IsRegular() {
				continue // dangling, or points at a directory
			}
		}

		if gi != nil && gi.MatchesPath(name) {
			continue
		}

		results = append(results, FileEntry{Path: name, Ext: ext})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// NormalizeExt returns ext with a leading dot, so "rs" and ".rs" are equal.
func NormalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// Dir reads file content relative to Root.
type Dir struct {
	Root string
}

// ReadFile returns the full content of the file at the root-relative path.
// Failures are reported as *ReadError.
func (d Dir) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Root, path))
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return data, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
