// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PageReport describes one page as seen by the analyzer.
type PageReport struct {
	Index  int        `json:"index" yaml:"index"`
	Name   string     `json:"name" yaml:"name"`
	Format PageFormat `json:"format" yaml:"format"`
	Width  int        `json:"width" yaml:"width"`
	Height int        `json:"height" yaml:"height"`

	// Size is the encoded size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// Checksum is the xxh3 digest of the page bytes, hex encoded.
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`

	// WidthPt and HeightPt are PDF page dimensions in points.
	WidthPt  float64 `json:"width_pt,omitempty" yaml:"width_pt,omitempty"`
	HeightPt float64 `json:"height_pt,omitempty" yaml:"height_pt,omitempty"`
}

// DPIStats summarizes per-page DPI estimates of a PDF. AutoDPI is the value
// conversion uses when no DPI is given.
type DPIStats struct {
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Average int `json:"average" yaml:"average"`
	AutoDPI int `json:"auto_dpi" yaml:"auto_dpi"`
}

// Report is the analyzer output for one input file.
type Report struct {
	Path      string       `json:"path" yaml:"path"`
	Kind      DocumentKind `json:"kind" yaml:"kind"`
	PageCount int          `json:"page_count" yaml:"page_count"`
	TotalSize int64        `json:"total_size" yaml:"total_size"`
	Formats   []PageFormat `json:"formats" yaml:"formats"`
	DPI       *DPIStats    `json:"dpi,omitempty" yaml:"dpi,omitempty"`
	Pages     []PageReport `json:"pages" yaml:"pages"`
}
