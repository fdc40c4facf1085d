// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns the path given on the command line into the
// sequence of documents to process.
package resolve

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// Candidate is a file found by Resolve.
type Candidate struct {
	Path string
	Kind types.DocumentKind
}

// CleanPath trims whitespace and stray quote characters that some shells
// leave around a path argument (e.g. a trailing `"` after a quoted
// directory ending in a backslash).
func CleanPath(p string) string {
	return strings.Trim(strings.TrimSpace(p), `"'`)
}

// Resolve yields the documents under path. A file yields itself; a
// directory yields its files in lexical order, descending into
// subdirectories only when recursive is set. Files with an unsupported
// extension are yielded with an error wrapping types.ErrUnsupportedFormat;
// hidden files and existing .cbz archives are passed over silently. A
// missing path yields a single error wrapping os.ErrNotExist.
//
// The sequence is lazy: directories are read as iteration proceeds.
func Resolve(path string, recursive bool) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		info, err := os.Stat(path)
		if err != nil {
			yield(Candidate{Path: path}, fmt.Errorf("resolving input: %w", err))
			return
		}
		if !info.IsDir() {
			yield(classify(path))
			return
		}
		if recursive {
			walk(path, yield)
			return
		}
		list(path, yield)
	}
}

// classify returns the candidate for a single file, with an error when
// its kind is not supported.
func classify(path string) (Candidate, error) {
	c := Candidate{Path: path, Kind: types.KindOf(path)}
	if c.Kind == types.KindUnknown {
		return c, fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, path)
	}
	return c, nil
}

// ignored reports whether a directory entry is skipped without mention.
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.EqualFold(filepath.Ext(name), ".cbz")
}

func list(dir string, yield func(Candidate, error) bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		yield(Candidate{Path: dir}, fmt.Errorf("scanning %s: %w", dir, err))
		return
	}
	for _, e := range entries {
		if ignored(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if !isFile(p, e) {
			continue
		}
		if !yield(classify(p)) {
			return
		}
	}
}

func walk(root string, yield func(Candidate, error) bool) {
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if !yield(Candidate{Path: p}, fmt.Errorf("scanning %s: %w", p, err)) {
				return filepath.SkipAll
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if ignored(d.Name()) || !isFile(p, d) {
			return nil
		}
		if !yield(classify(p)) {
			return filepath.SkipAll
		}
		return nil
	})
}

// isFile reports whether the entry is a regular file, following symlinks.
func isFile(p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
