// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/convert2cbz/internal/tools"
	"github.com/pdiddy/convert2cbz/internal/transcode"
	"github.com/pdiddy/convert2cbz/pkg/types"
)

func TestPageDPI(t *testing.T) {
	assert.Equal(t, 241, PageDPI(595.276)) // A4 width
	assert.Equal(t, 144, PageDPI(1000))
	assert.Equal(t, 0, PageDPI(0))
}

func TestStats(t *testing.T) {
	tests := []struct {
		name  string
		sizes []tools.PageSize
		want  types.DPIStats
	}{
		{
			name:  "mixed widths",
			sizes: []tools.PageSize{{Width: 1000}, {Width: 2000}, {Width: 595.276}},
			want:  types.DPIStats{Min: 72, Max: 241, Average: 152, AutoDPI: 152},
		},
		{
			name:  "large pages floor at minimum",
			sizes: []tools.PageSize{{Width: 2880}},
			want:  types.DPIStats{Min: 50, Max: 50, Average: 50, AutoDPI: types.MinAutoDPI},
		},
		{
			name:  "no usable widths",
			sizes: []tools.PageSize{{Width: 0}},
			want:  types.DPIStats{AutoDPI: types.MinAutoDPI},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stats(tt.sizes))
		})
	}
}

func pdfPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.pdf")
	require.NoError(t, writeFile(path, []byte("%PDF-1.7")))
	return path
}

func TestPDFExtractDefaultsToPNGAtAutoDPI(t *testing.T) {
	tool := &fakePDF{t: t, sizes: []tools.PageSize{{Width: 1000, Height: 1500}, {Width: 1000, Height: 1500}, {Width: 1000, Height: 1500}}}

	doc, err := NewPDF(toolbox(nil, tool)).Extract(context.Background(), pdfPath(t), types.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 144, tool.gotDPI)
	require.Len(t, doc.Pages, 3)
	for i, p := range doc.Pages {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, types.PagePNG, p.Format)
		assert.Equal(t, 8+i, p.Width, "page %d out of order", i)
		assert.Equal(t, 144, p.DPI)
	}
}

func TestPDFExtractJPEGWithExplicitDPI(t *testing.T) {
	tool := &fakePDF{t: t, sizes: []tools.PageSize{{Width: 600}, {Width: 600}}}
	opts := types.Options{DPI: 300, Format: types.FormatJPEG, Quality: 70}

	doc, err := NewPDF(toolbox(nil, tool)).Extract(context.Background(), pdfPath(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 300, tool.gotDPI)
	for _, p := range doc.Pages {
		assert.Equal(t, types.PageJPEG, p.Format)
		assert.Equal(t, types.PageJPEG, transcode.Sniff(p.Data))
	}
	assert.Equal(t, 9, doc.Pages[1].Width)
}

func TestPDFErrors(t *testing.T) {
	tests := []struct {
		name    string
		tool    *fakePDF
		wantErr error
	}{
		{name: "renderer missing", tool: nil, wantErr: types.ErrDependencyMissing},
		{name: "unreadable pdf", tool: &fakePDF{sizeErr: errBoom}, wantErr: types.ErrExtraction},
		{name: "no pages", tool: &fakePDF{}, wantErr: types.ErrEmptyDocument},
		{name: "render failure", tool: &fakePDF{sizes: []tools.PageSize{{Width: 500}}, renderErr: errBoom}, wantErr: types.ErrExtraction},
		{name: "page count mismatch", tool: &fakePDF{sizes: []tools.PageSize{{Width: 500}, {Width: 500}}, skipLast: true}, wantErr: types.ErrExtraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tool PDFTool
			if tt.tool != nil {
				tt.tool.t = t
				tool = tt.tool
			}
			_, err := NewPDF(toolbox(nil, tool)).Extract(context.Background(), pdfPath(t), types.DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
