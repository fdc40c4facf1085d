// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cbz writes ordered page images into CBZ archives (ZIP files with
// sequentially named images) and reads them back for verification.
package cbz

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// Ext is the extension of produced archives.
const Ext = ".cbz"

// minPadding is the smallest width of the zero-padded page number.
const minPadding = 3

// EntryName returns the archive name of the page at index i (zero-based)
// in a document of n pages: "<stem>_<NNN><ext>". Numbers start at 1 and are
// zero-padded to a common width so lexical order equals page order.
func EntryName(stem string, i, n int, format types.PageFormat) string {
	width := len(strconv.Itoa(n))
	if width < minPadding {
		width = minPadding
	}
	return fmt.Sprintf("%s_%0*d%s", stem, width, i+1, format.Ext())
}

// OutputPath returns the CBZ path for input: "<outputDir>/<stem>.cbz", or the
// input's own directory when outputDir is empty.
func OutputPath(input, outputDir string) string {
	base := filepath.Base(input)
	stem := base[:len(base)-len(filepath.Ext(base))]
	if outputDir == "" {
		outputDir = filepath.Dir(input)
	}
	return filepath.Join(outputDir, stem+Ext)
}

// Write stores pages, in slice order, into a new CBZ at path. Entry names are
// derived from stem with EntryName. The archive is assembled in a temporary
// file next to path and renamed into place, so a failed write never leaves a
// partial archive behind. Errors wrap types.ErrWriteOutput.
func Write(path, stem string, pages []types.Page) (err error) {
	if len(pages) == 0 {
		return fmt.Errorf("writing %s: %w", path, types.ErrEmptyDocument)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", types.ErrWriteOutput, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrWriteOutput, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	now := time.Now()
	for i, page := range pages {
		hdr := &zip.FileHeader{
			Name:     EntryName(stem, i, len(pages), page.Format),
			Method:   methodFor(page.Format),
			Modified: now,
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("%w: adding %s: %v", types.ErrWriteOutput, hdr.Name, err)
		}
		if _, err := w.Write(page.Data); err != nil {
			return fmt.Errorf("%w: writing %s: %v", types.ErrWriteOutput, hdr.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: finalizing archive: %v", types.ErrWriteOutput, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrWriteOutput, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrWriteOutput, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", types.ErrWriteOutput, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", types.ErrWriteOutput, err)
	}
	return nil
}

// methodFor stores already-compressed formats and deflates the rest.
func methodFor(f types.PageFormat) uint16 {
	switch f {
	case types.PageJPEG, types.PagePNG, types.PageGIF, types.PageWebP:
		return zip.Store
	default:
		return zip.Deflate
	}
}

// Entries returns the entry names of the archive at path in stored order.
func Entries(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}
