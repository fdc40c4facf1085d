// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// tree creates files (relative slash paths) under a fresh temp dir.
func tree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return dir
}

type result struct {
	rel         string
	kind        types.DocumentKind
	unsupported bool
}

func collect(t *testing.T, root string, recursive bool) []result {
	t.Helper()
	var out []result
	for c, err := range Resolve(root, recursive) {
		if err != nil && !errors.Is(err, types.ErrUnsupportedFormat) {
			t.Fatalf("unexpected error: %v", err)
		}
		rel, relErr := filepath.Rel(root, c.Path)
		require.NoError(t, relErr)
		out = append(out, result{rel: filepath.ToSlash(rel), kind: c.Kind, unsupported: err != nil})
	}
	return out
}

func TestResolveDirectoryNonRecursive(t *testing.T) {
	root := tree(t, "b.epub", "a.PDF", "c.cbr", "notes.txt", "done.cbz", ".hidden.pdf", "sub/deep.pdf")

	got := collect(t, root, false)
	assert.Equal(t, []result{
		{rel: "a.PDF", kind: types.KindPDF},
		{rel: "b.epub", kind: types.KindEPUB},
		{rel: "c.cbr", kind: types.KindCBR},
		{rel: "notes.txt", unsupported: true},
	}, got)
}

func TestResolveDirectoryRecursive(t *testing.T) {
	root := tree(t, "z.pdf", "sub/deep.cbr", "sub/inner/x.epub", ".git/config.pdf", "sub/readme.md")

	got := collect(t, root, true)
	assert.Equal(t, []result{
		{rel: "sub/deep.cbr", kind: types.KindCBR},
		{rel: "sub/inner/x.epub", kind: types.KindEPUB},
		{rel: "sub/readme.md", unsupported: true},
		{rel: "z.pdf", kind: types.KindPDF},
	}, got)
}

func TestResolveSingleFile(t *testing.T) {
	root := tree(t, "book.epub", "book.docx")

	var n int
	for c, err := range Resolve(filepath.Join(root, "book.epub"), false) {
		require.NoError(t, err)
		assert.Equal(t, types.KindEPUB, c.Kind)
		n++
	}
	assert.Equal(t, 1, n)

	for c, err := range Resolve(filepath.Join(root, "book.docx"), false) {
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
		assert.Equal(t, types.KindUnknown, c.Kind)
	}
}

func TestResolveMissingPath(t *testing.T) {
	var errs []error
	for _, err := range Resolve(filepath.Join(t.TempDir(), "missing"), false) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestResolveStopsEarly(t *testing.T) {
	root := tree(t, "a.pdf", "b.pdf", "c.pdf", "d/e.pdf")
	for _, recursive := range []bool{false, true} {
		n := 0
		for range Resolve(root, recursive) {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	}
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, `C:\comics\`, CleanPath(`C:\comics\"`))
	assert.Equal(t, "/comics/book.pdf", CleanPath("  '/comics/book.pdf' "))
	assert.Equal(t, "plain", CleanPath("plain"))
}
