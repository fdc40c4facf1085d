// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the convert2cbz pipeline:
// documents and their pages, conversion options and jobs, analyzer reports,
// and the sentinel errors every stage reports through.
package types

import (
	"path/filepath"
	"strings"
)

// DocumentKind identifies the container format of an input file.
type DocumentKind string

const (
	KindUnknown DocumentKind = ""
	KindPDF     DocumentKind = "pdf"
	KindCBR     DocumentKind = "cbr"
	KindEPUB    DocumentKind = "epub"
)

// kindByExt maps lowercase extensions (with leading dot) to document kinds.
var kindByExt = map[string]DocumentKind{
	".pdf":  KindPDF,
	".cbr":  KindCBR,
	".epub": KindEPUB,
}

// KindOf returns the document kind inferred from the extension of path, or
// KindUnknown when the extension is not recognized.
func KindOf(path string) DocumentKind {
	return kindByExt[strings.ToLower(filepath.Ext(path))]
}

// String returns the kind in upper case for display ("PDF", "CBR", "EPUB").
func (k DocumentKind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return strings.ToUpper(string(k))
}

// PageFormat is the encoding of a page image.
type PageFormat string

const (
	PageUnknown PageFormat = ""
	PageJPEG    PageFormat = "jpeg"
	PagePNG     PageFormat = "png"
	PageGIF     PageFormat = "gif"
	PageWebP    PageFormat = "webp"
	PageBMP     PageFormat = "bmp"
	PageTIFF    PageFormat = "tiff"
)

// Ext returns the file extension used for the format inside a CBZ, with a
// leading dot.
func (f PageFormat) Ext() string {
	switch f {
	case PageJPEG:
		return ".jpg"
	case PageUnknown:
		return ".bin"
	default:
		return "." + string(f)
	}
}

// Page is a single page image. Index is the page position in the source
// document and is preserved end to end.
type Page struct {
	// Index is the zero-based position of the page in source order.
	Index int `json:"index" yaml:"index"`

	// Name is the entry name in the source container (or the rendered file
	// name for PDF pages).
	Name string `json:"name" yaml:"name"`

	// Data holds the encoded image bytes.
	Data []byte `json:"-" yaml:"-"`

	// Format is the encoding of Data.
	Format PageFormat `json:"format" yaml:"format"`

	// Width and Height are the pixel dimensions; zero when they could not be
	// decoded from the image header.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// DPI is the rasterization resolution for rendered PDF pages, zero otherwise.
	DPI int `json:"dpi,omitempty" yaml:"dpi,omitempty"`
}

// Document is an input file together with its ordered page images.
type Document struct {
	Path  string       `json:"path" yaml:"path"`
	Kind  DocumentKind `json:"kind" yaml:"kind"`
	Pages []Page       `json:"pages" yaml:"pages"`
}

// Stem returns the input file name without directory and extension.
func (d *Document) Stem() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
