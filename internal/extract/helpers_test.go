// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/convert2cbz/internal/tools"
	"github.com/pdiddy/convert2cbz/pkg/types"
)

// zipEntry is one member of a generated test archive.
type zipEntry struct {
	name string
	data []byte
}

// writeZip creates an archive at path with entries in the given order.
func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		method := zip.Deflate
		if e.name == "mimetype" {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: method})
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// jpegPage returns a small JPEG whose width encodes n, so pages can be told
// apart by their dimensions after a round trip.
func jpegPage(t *testing.T, n int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10+n, 20))
	for x := 0; x < 10+n; x++ {
		img.Set(x, x%20, color.RGBA{R: uint8(n * 20), A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func pngPage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeRAR implements RARTool over an in-memory list of members.
type fakeRAR struct {
	members    []zipEntry // stored order
	listErr    error
	extractErr error
}

func (f *fakeRAR) Name() string { return "unrar" }

func (f *fakeRAR) List(_ context.Context, _ string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	names := make([]string, len(f.members))
	for i, m := range f.members {
		names[i] = m.name
	}
	return names, nil
}

func (f *fakeRAR) Extract(_ context.Context, _ string, dest string) error {
	if f.extractErr != nil {
		return f.extractErr
	}
	for _, m := range f.members {
		p := filepath.Join(dest, filepath.FromSlash(m.name))
		if m.data == nil {
			if err := os.MkdirAll(p, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, m.data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// fakePDF implements PDFTool, rendering each page as a PNG whose width is
// derived from the page index.
type fakePDF struct {
	t         *testing.T
	sizes     []tools.PageSize
	sizeErr   error
	renderErr error
	skipLast  bool
	gotDPI    int
}

func (f *fakePDF) PageSizes(_ context.Context, _ string) ([]tools.PageSize, error) {
	return f.sizes, f.sizeErr
}

func (f *fakePDF) Render(_ context.Context, _ string, dpi int, dir string) ([]string, error) {
	f.gotDPI = dpi
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	n := len(f.sizes)
	if f.skipLast {
		n--
	}
	var paths []string
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("page-%d.png", i+1))
		if err := os.WriteFile(p, pngPage(f.t, 8+i, 12), 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func toolbox(rar RARTool, pdf PDFTool) Toolbox {
	return Toolbox{
		RAR: func() (RARTool, error) {
			if rar == nil {
				return nil, fmt.Errorf("%w: none of unrar, rar found on PATH", types.ErrDependencyMissing)
			}
			return rar, nil
		},
		PDF: func() (PDFTool, error) {
			if pdf == nil {
				return nil, fmt.Errorf("%w: none of pdfinfo found on PATH", types.ErrDependencyMissing)
			}
			return pdf, nil
		},
	}
}

var errBoom = errors.New("boom")

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
