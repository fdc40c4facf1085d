// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pdiddy/convert2cbz/internal/tools"
	"github.com/pdiddy/convert2cbz/internal/transcode"
	"github.com/pdiddy/convert2cbz/pkg/types"
)

// targetWidthPx is the page width in pixels the automatic DPI aims for.
const targetWidthPx = 2000

// PDF rasterizes PDF pages and transcodes them to the configured format.
type PDF struct {
	tools Toolbox
}

// NewPDF returns a PDF extractor using tb to locate the renderer.
func NewPDF(tb Toolbox) *PDF { return &PDF{tools: tb} }

// PageDPI estimates the DPI that renders a page of widthPt points at
// targetWidthPx pixels. Non-positive widths yield 0.
func PageDPI(widthPt float64) int {
	if widthPt <= 0 {
		return 0
	}
	return int(targetWidthPx / widthPt * 72)
}

// Stats computes per-page DPI estimates over sizes. AutoDPI is the rounded
// average, floored at types.MinAutoDPI. Pages without a usable width are
// ignored; with none left AutoDPI is types.MinAutoDPI.
func Stats(sizes []tools.PageSize) types.DPIStats {
	stats := types.DPIStats{Min: math.MaxInt}
	sum, n := 0, 0
	for _, s := range sizes {
		dpi := PageDPI(s.Width)
		if dpi == 0 {
			continue
		}
		stats.Min = min(stats.Min, dpi)
		stats.Max = max(stats.Max, dpi)
		sum += dpi
		n++
	}
	if n == 0 {
		return types.DPIStats{AutoDPI: types.MinAutoDPI}
	}
	stats.Average = int(math.Round(float64(sum) / float64(n)))
	stats.AutoDPI = max(stats.Average, types.MinAutoDPI)
	return stats
}

// Geometry returns the page sizes of the PDF at path.
func (p *PDF) Geometry(ctx context.Context, path string) ([]tools.PageSize, error) {
	tool, err := p.tool()
	if err != nil {
		return nil, err
	}
	sizes, err := tool.PageSizes(ctx, path)
	if err != nil {
		return nil, extractionError(path, err)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", types.ErrEmptyDocument, path)
	}
	return sizes, nil
}

// Extract renders every page at opts.DPI (or the automatic DPI when zero)
// and encodes it as opts.Format at opts.Quality.
func (p *PDF) Extract(ctx context.Context, path string, opts types.Options) (*types.Document, error) {
	tool, err := p.tool()
	if err != nil {
		return nil, err
	}
	sizes, err := p.Geometry(ctx, path)
	if err != nil {
		return nil, err
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = Stats(sizes).AutoDPI
	}
	format := opts.Format
	if format == "" {
		format = types.FormatPNG
	}
	quality := opts.Quality
	if quality == 0 {
		quality = types.DefaultQuality
	}

	doc := &types.Document{Path: path, Kind: types.KindPDF}
	err = withTempDir(func(dir string) error {
		files, err := tool.Render(ctx, path, dpi, dir)
		if err != nil {
			return extractionError(path, err)
		}
		if len(files) != len(sizes) {
			return fmt.Errorf("%w: %s: rendered %d of %d pages", types.ErrExtraction, path, len(files), len(sizes))
		}
		for i, file := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return extractionError(path, err)
			}
			page := types.Page{Index: i, Name: filepath.Base(file), Data: data, DPI: dpi}
			page, err = transcode.Transcode(page, format, quality)
			if err != nil {
				return extractionError(path, err)
			}
			doc.Pages = append(doc.Pages, page)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *PDF) tool() (PDFTool, error) {
	if p.tools.PDF == nil {
		return nil, fmt.Errorf("%w: no PDF renderer configured", types.ErrDependencyMissing)
	}
	return p.tools.PDF()
}
