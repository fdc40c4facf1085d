// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns input documents into ordered page images. CBR and
// EPUB archives are unpacked and their images passed through untouched; PDF
// pages are rasterized and transcoded to the configured format.
package extract

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/pdiddy/convert2cbz/internal/tools"
	"github.com/pdiddy/convert2cbz/internal/transcode"
	"github.com/pdiddy/convert2cbz/pkg/types"
)

// tempPattern names the per-job scratch directories.
const tempPattern = "convert2cbz-*"

// Extractor reads a document and returns its pages in source order.
type Extractor interface {
	Extract(ctx context.Context, path string, opts types.Options) (*types.Document, error)
}

// RARTool lists and unpacks RAR archives.
type RARTool interface {
	Name() string
	List(ctx context.Context, archive string) ([]string, error)
	Extract(ctx context.Context, archive, dest string) error
}

// PDFTool reads page geometry from PDFs and rasterizes their pages.
type PDFTool interface {
	PageSizes(ctx context.Context, pdf string) ([]tools.PageSize, error)
	Render(ctx context.Context, pdf string, dpi int, dir string) ([]string, error)
}

// Toolbox resolves external tools on first use, so a missing decompressor
// only fails the documents that need it.
type Toolbox struct {
	RAR func() (RARTool, error)
	PDF func() (PDFTool, error)
}

// SystemTools returns a Toolbox backed by the executables on PATH.
// Detection runs once per tool.
func SystemTools() Toolbox {
	var (
		rar    RARTool
		rarErr error
		rarOK  bool
		pdf    PDFTool
		pdfErr error
		pdfOK  bool
	)
	return Toolbox{
		RAR: func() (RARTool, error) {
			if !rarOK {
				r, err := tools.DetectRAR()
				if err == nil {
					rar = r
				}
				rarErr, rarOK = err, true
			}
			return rar, rarErr
		},
		PDF: func() (PDFTool, error) {
			if !pdfOK {
				p, err := tools.DetectPoppler()
				if err == nil {
					pdf = p
				}
				pdfErr, pdfOK = err, true
			}
			return pdf, pdfErr
		},
	}
}

// ForKind returns the extractor for kind.
func ForKind(kind types.DocumentKind, tb Toolbox) (Extractor, error) {
	switch kind {
	case types.KindPDF:
		return NewPDF(tb), nil
	case types.KindCBR:
		return NewCBR(tb), nil
	case types.KindEPUB:
		return NewEPUB(), nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, kind)
	}
}

// imageExts are the archive entry extensions treated as page candidates.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// isPageEntry reports whether an archive entry name looks like a page
// image. Resource forks and hidden files are excluded.
func isPageEntry(name string) bool {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "__MACOSX/") || strings.Contains(name, "/__MACOSX/") {
		return false
	}
	base := path.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return imageExts[strings.ToLower(path.Ext(base))]
}

// newPage builds a page from raw bytes, identifying format and size. It
// returns false when data is not a recognized image.
func newPage(index int, name string, data []byte) (types.Page, bool) {
	page := types.Page{Index: index, Name: name, Data: data}
	transcode.Inspect(&page)
	return page, page.Format != types.PageUnknown
}

// withTempDir runs fn with a fresh scratch directory that is removed
// afterwards, whatever the outcome.
func withTempDir(fn func(dir string) error) error {
	dir, err := os.MkdirTemp("", tempPattern)
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)
	return fn(dir)
}

// extractionError wraps err as an ErrExtraction for path.
func extractionError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrExtraction, path, err)
}
