// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

const (
	binPdfinfo  = "pdfinfo"
	binPdftoppm = "pdftoppm"

	// renderPrefix is the file name prefix pdftoppm writes pages under.
	renderPrefix = "page"
)

// PageSize is a PDF page size in points (1/72 inch).
type PageSize struct {
	Width  float64
	Height float64
}

var (
	pagesLine    = regexp.MustCompile(`(?m)^Pages:\s+(\d+)`)
	pageSizeLine = regexp.MustCompile(`(?m)^Page\s+(\d+)\s+size:\s+([\d.]+)\s+x\s+([\d.]+)\s+pts`)
	renderedPage = regexp.MustCompile(`^` + renderPrefix + `-(\d+)\.(png|jpg|ppm)$`)
)

// Poppler drives pdfinfo and pdftoppm.
type Poppler struct {
	exec executor
}

// DetectPoppler verifies pdfinfo and pdftoppm are on PATH. The error wraps
// types.ErrDependencyMissing.
func DetectPoppler() (*Poppler, error) {
	return detectPoppler(defaultExec)
}

func detectPoppler(exec executor) (*Poppler, error) {
	for _, bin := range []string{binPdfinfo, binPdftoppm} {
		if _, err := lookFirst(exec, bin); err != nil {
			return nil, err
		}
	}
	return &Poppler{exec: exec}, nil
}

// Name identifies the renderer in log lines.
func (p *Poppler) Name() string { return binPdftoppm }

// PageSizes returns the size of every page, in page order.
func (p *Poppler) PageSizes(ctx context.Context, pdf string) ([]PageSize, error) {
	out, err := p.exec.Output(ctx, binPdfinfo, pdf)
	if err != nil {
		return nil, fmt.Errorf("reading %s with %s: %w", pdf, binPdfinfo, err)
	}
	m := pagesLine.FindSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("reading %s with %s: no page count reported", pdf, binPdfinfo)
	}
	n, _ := strconv.Atoi(string(m[1]))
	if n == 0 {
		return nil, nil
	}

	out, err = p.exec.Output(ctx, binPdfinfo, "-f", "1", "-l", strconv.Itoa(n), pdf)
	if err != nil {
		return nil, fmt.Errorf("reading page sizes of %s: %w", pdf, err)
	}
	return parsePageSizes(out, n)
}

// parsePageSizes extracts "Page N size: W x H pts" lines into a slice of n
// entries indexed by page number.
func parsePageSizes(out []byte, n int) ([]PageSize, error) {
	sizes := make([]PageSize, n)
	seen := 0
	for _, m := range pageSizeLine.FindAllSubmatch(out, -1) {
		num, _ := strconv.Atoi(string(m[1]))
		if num < 1 || num > n {
			continue
		}
		w, _ := strconv.ParseFloat(string(m[2]), 64)
		h, _ := strconv.ParseFloat(string(m[3]), 64)
		sizes[num-1] = PageSize{Width: w, Height: h}
		seen++
	}
	if seen != n {
		return nil, fmt.Errorf("expected %d page sizes, got %d", n, seen)
	}
	return sizes, nil
}

// Render rasterizes every page of pdf as PNG at dpi into dir and returns the
// produced files in page order.
func (p *Poppler) Render(ctx context.Context, pdf string, dpi int, dir string) ([]string, error) {
	prefix := filepath.Join(dir, renderPrefix)
	if err := p.exec.Run(ctx, binPdftoppm, "-png", "-r", strconv.Itoa(dpi), pdf, prefix); err != nil {
		return nil, fmt.Errorf("rendering %s with %s: %w", pdf, binPdftoppm, err)
	}
	return renderedFiles(dir)
}

// renderedFiles lists pdftoppm output in dir ordered by page number.
// pdftoppm pads page numbers to the width of the page count, so names are
// ordered numerically rather than lexically.
func renderedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading render directory: %w", err)
	}
	type rendered struct {
		num  int
		path string
	}
	var pages []rendered
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := renderedPage.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		pages = append(pages, rendered{num: num, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	paths := make([]string, len(pages))
	for i, pg := range pages {
		paths[i] = pg.path
	}
	return paths, nil
}
