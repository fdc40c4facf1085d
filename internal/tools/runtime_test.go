// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool              // binary -> whether LookPath succeeds
	outputs       map[string]string            // "bin arg1 arg2" -> stdout
	runFunc       func(name string, args []string) error
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	key := name + " " + strings.Join(args, " ")
	m.calls = append(m.calls, key)
	out, ok := m.outputs[key]
	if !ok {
		return nil, errors.New("command failed: " + key)
	}
	return []byte(out), nil
}

func (m *mockExecutor) Run(_ context.Context, name string, args ...string) error {
	m.calls = append(m.calls, name+" "+strings.Join(args, " "))
	if m.runFunc != nil {
		return m.runFunc(name, args)
	}
	return nil
}

func TestDetectRAR(t *testing.T) {
	tests := []struct {
		name     string
		bins     map[string]bool
		wantName string
		wantErr  bool
	}{
		{name: "unrar available", bins: map[string]bool{"unrar": true}, wantName: "unrar"},
		{name: "rar fallback when unrar missing", bins: map[string]bool{"rar": true}, wantName: "rar"},
		{name: "both available, unrar preferred", bins: map[string]bool{"unrar": true, "rar": true}, wantName: "unrar"},
		{name: "neither available", bins: map[string]bool{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := detectRAR(&mockExecutor{availableBins: tt.bins})
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrDependencyMissing)
				assert.Contains(t, err.Error(), "unrar")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, r.Name())
		})
	}
}

func TestRARList(t *testing.T) {
	exec := &mockExecutor{outputs: map[string]string{
		"unrar lb -p- book.cbr": "Book/010.jpg\r\nBook/002.jpg\r\n\r\nBook\r\n",
	}}
	r := &RAR{bin: "unrar", exec: exec}

	names, err := r.List(context.Background(), "book.cbr")
	require.NoError(t, err)
	assert.Equal(t, []string{"Book/010.jpg", "Book/002.jpg", "Book"}, names)
}

func TestRARListFailure(t *testing.T) {
	r := &RAR{bin: "unrar", exec: &mockExecutor{}}
	_, err := r.List(context.Background(), "broken.cbr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.cbr")
}

func TestRARExtractAddsTrailingSeparator(t *testing.T) {
	var gotArgs []string
	exec := &mockExecutor{runFunc: func(name string, args []string) error {
		gotArgs = args
		return nil
	}}
	r := &RAR{bin: "rar", exec: exec}

	require.NoError(t, r.Extract(context.Background(), "book.cbr", "/tmp/out"))
	require.NotEmpty(t, gotArgs)
	assert.Equal(t, "/tmp/out"+string(filepath.Separator), gotArgs[len(gotArgs)-1])
	assert.Equal(t, "x", gotArgs[0])
}

func TestDetectPoppler(t *testing.T) {
	_, err := detectPoppler(&mockExecutor{availableBins: map[string]bool{"pdfinfo": true}})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDependencyMissing)
	assert.Contains(t, err.Error(), "pdftoppm")

	p, err := detectPoppler(&mockExecutor{availableBins: map[string]bool{"pdfinfo": true, "pdftoppm": true}})
	require.NoError(t, err)
	assert.Equal(t, "pdftoppm", p.Name())
}

func TestPageSizes(t *testing.T) {
	exec := &mockExecutor{outputs: map[string]string{
		"pdfinfo doc.pdf": "Title:          Safari\nPages:          2\nEncrypted:      no\n",
		"pdfinfo -f 1 -l 2 doc.pdf": "Pages:          2\n" +
			"Page    1 size: 595.276 x 841.89 pts (A4)\n" +
			"Page    1 rot:  0\n" +
			"Page    2 size: 1000 x 1500 pts\n" +
			"Page    2 rot:  0\n",
	}}
	p := &Poppler{exec: exec}

	sizes, err := p.PageSizes(context.Background(), "doc.pdf")
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	assert.InDelta(t, 595.276, sizes[0].Width, 0.001)
	assert.InDelta(t, 841.89, sizes[0].Height, 0.001)
	assert.Equal(t, PageSize{Width: 1000, Height: 1500}, sizes[1])
}

func TestPageSizesMissingPages(t *testing.T) {
	exec := &mockExecutor{outputs: map[string]string{
		"pdfinfo doc.pdf":           "Pages:          3\n",
		"pdfinfo -f 1 -l 3 doc.pdf": "Page    1 size: 600 x 800 pts\n",
	}}
	p := &Poppler{exec: exec}

	_, err := p.PageSizes(context.Background(), "doc.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 page sizes")
}

func TestPageSizesNoPageCount(t *testing.T) {
	exec := &mockExecutor{outputs: map[string]string{"pdfinfo doc.pdf": "Syntax Error\n"}}
	_, err := (&Poppler{exec: exec}).PageSizes(context.Background(), "doc.pdf")
	require.Error(t, err)
}

func TestRenderOrdersPagesNumerically(t *testing.T) {
	dir := t.TempDir()
	exec := &mockExecutor{runFunc: func(name string, args []string) error {
		if name != "pdftoppm" {
			return errors.New("expected pdftoppm")
		}
		prefix := args[len(args)-1]
		for _, n := range []string{"10", "09", "01", "02"} {
			if err := os.WriteFile(prefix+"-"+n+".png", []byte(n), 0o644); err != nil {
				return err
			}
		}
		return os.WriteFile(filepath.Join(dir, "unrelated.txt"), nil, 0o644)
	}}
	p := &Poppler{exec: exec}

	paths, err := p.Render(context.Background(), "doc.pdf", 150, dir)
	require.NoError(t, err)

	var names []string
	for _, path := range paths {
		names = append(names, filepath.Base(path))
	}
	assert.Equal(t, []string{"page-01.png", "page-02.png", "page-09.png", "page-10.png"}, names)
	assert.Contains(t, exec.calls[0], "-r 150")
}

func TestRenderFailure(t *testing.T) {
	exec := &mockExecutor{runFunc: func(string, []string) error { return errors.New("exit status 1") }}
	_, err := (&Poppler{exec: exec}).Render(context.Background(), "doc.pdf", 72, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering doc.pdf")
}

func TestWithStderr(t *testing.T) {
	base := errors.New("exit status 3")
	assert.Equal(t, base, withStderr(base, "  \n"))

	err := withStderr(base, "Cannot open broken.cbr\nmore detail\n")
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "exit status 3: Cannot open broken.cbr", err.Error())
}
