// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

var (
	zipMagic = []byte("PK\x03\x04")
	rarMagic = []byte("Rar!\x1a\x07")
)

// readHead returns up to n leading bytes of the file at path.
func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}

func isZip(head []byte) bool { return bytes.HasPrefix(head, zipMagic) }
func isRar(head []byte) bool { return bytes.HasPrefix(head, rarMagic) }

// readZipFile returns the contents of one archive member.
func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

// zipImages collects the page images of a ZIP-based comic archive in the
// order the entries are stored.
func zipImages(path string, kind types.DocumentKind) (*types.Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, extractionError(path, err)
	}
	defer zr.Close()

	doc := &types.Document{Path: path, Kind: kind}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isPageEntry(f.Name) {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, extractionError(path, err)
		}
		if page, ok := newPage(len(doc.Pages), f.Name, data); ok {
			doc.Pages = append(doc.Pages, page)
		}
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrEmptyDocument, path)
	}
	return doc, nil
}
