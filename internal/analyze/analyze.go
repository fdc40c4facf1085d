// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze inspects input documents and reports their pages without
// producing any output file.
package analyze

import (
	"context"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"

	"github.com/pdiddy/convert2cbz/internal/extract"
	"github.com/pdiddy/convert2cbz/pkg/types"
)

// Analyzer builds reports for documents of any supported kind.
type Analyzer struct {
	tools extract.Toolbox
}

// New returns an Analyzer that locates external tools through tb.
func New(tb extract.Toolbox) *Analyzer {
	return &Analyzer{tools: tb}
}

// Analyze reports on the document at path. PDFs are measured from their
// page geometry: page pixel sizes are those conversion would produce at the
// effective DPI and output format, and nothing is rendered. CBR and EPUB
// documents are unpacked into a scratch directory that is removed before
// Analyze returns.
func (a *Analyzer) Analyze(ctx context.Context, path string, opts types.Options) (*types.Report, error) {
	kind := types.KindOf(path)
	switch kind {
	case types.KindPDF:
		return a.analyzePDF(ctx, path, opts)
	case types.KindCBR, types.KindEPUB:
		ex, err := extract.ForKind(kind, a.tools)
		if err != nil {
			return nil, err
		}
		doc, err := ex.Extract(ctx, path, opts)
		if err != nil {
			return nil, err
		}
		return FromDocument(doc), nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, path)
	}
}

func (a *Analyzer) analyzePDF(ctx context.Context, path string, opts types.Options) (*types.Report, error) {
	sizes, err := extract.NewPDF(a.tools).Geometry(ctx, path)
	if err != nil {
		return nil, err
	}
	stats := extract.Stats(sizes)
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = stats.AutoDPI
	}
	format := types.PagePNG
	if opts.Format == types.FormatJPEG {
		format = types.PageJPEG
	}

	r := &types.Report{
		Path:      path,
		Kind:      types.KindPDF,
		PageCount: len(sizes),
		Formats:   []types.PageFormat{format},
		DPI:       &stats,
		Pages:     make([]types.PageReport, len(sizes)),
	}
	for i, s := range sizes {
		r.Pages[i] = types.PageReport{
			Index:    i,
			Name:     fmt.Sprintf("page-%d", i+1),
			Format:   format,
			Width:    pixels(s.Width, dpi),
			Height:   pixels(s.Height, dpi),
			WidthPt:  s.Width,
			HeightPt: s.Height,
		}
	}
	return r, nil
}

// pixels converts a length in points to pixels at dpi, rounding like
// pdftoppm does.
func pixels(pt float64, dpi int) int {
	return int(math.Ceil(pt * float64(dpi) / 72))
}

// FromDocument builds a report from already extracted pages, including a
// checksum of every page's bytes.
func FromDocument(doc *types.Document) *types.Report {
	r := &types.Report{
		Path:      doc.Path,
		Kind:      doc.Kind,
		PageCount: len(doc.Pages),
		Pages:     make([]types.PageReport, len(doc.Pages)),
	}
	seen := make(map[types.PageFormat]bool)
	for i, p := range doc.Pages {
		size := int64(len(p.Data))
		r.TotalSize += size
		if !seen[p.Format] {
			seen[p.Format] = true
			r.Formats = append(r.Formats, p.Format)
		}
		r.Pages[i] = types.PageReport{
			Index:    p.Index,
			Name:     p.Name,
			Format:   p.Format,
			Width:    p.Width,
			Height:   p.Height,
			Size:     size,
			Checksum: Checksum(p.Data),
		}
	}
	return r
}

// Checksum returns the hex encoded xxh3 digest of data.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
