package types

import (
	"fmt"
	"strings"
)

// ImageFormat selects the encoding of rendered PDF pages.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
)

// ReportFormat selects how analyzer reports are printed.
type ReportFormat string

const (
	ReportText ReportFormat = "text"
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

const (
	// DefaultQuality is the JPEG quality used when none is configured.
	DefaultQuality = 85

	// MinAutoDPI is the floor applied to the automatically computed DPI.
	MinAutoDPI = 100
)

// Options holds the effective settings for a run. It is populated from
// defaults, the config file, environment and flags, in that order.
type Options struct {
	// OutputDir is the directory receiving CBZ files. Empty means next to
	// each input file.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// OutputFile is an explicit CBZ path, only honored for single-file input.
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty" mapstructure:"output_file"`

	// DPI is the PDF rasterization resolution; 0 selects it automatically
	// from the page widths.
	DPI int `json:"dpi" yaml:"dpi" mapstructure:"dpi"`

	// Quality is the JPEG quality (1-100) for rendered PDF pages.
	Quality int `json:"quality" yaml:"quality" mapstructure:"quality"`

	// Format is the encoding of rendered PDF pages.
	Format ImageFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Recursive makes directory scans descend into subdirectories.
	Recursive bool `json:"recursive" yaml:"recursive" mapstructure:"recursive"`

	// SkipExisting leaves inputs alone when their CBZ already exists.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing" mapstructure:"skip_existing"`

	// Analyze reports document metadata instead of converting.
	Analyze bool `json:"analyze" yaml:"analyze" mapstructure:"analyze"`

	// ReportFormat selects the analyzer output encoding.
	ReportFormat ReportFormat `json:"report" yaml:"report" mapstructure:"report"`

	// LogFile is an optional path receiving a copy of the log.
	LogFile string `json:"logfile,omitempty" yaml:"logfile,omitempty" mapstructure:"logfile"`
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Quality:      DefaultQuality,
		Format:       FormatPNG,
		ReportFormat: ReportText,
	}
}

// Validate normalizes enum fields to lower case and checks every value is in
// range. Errors wrap ErrInvalidOption.
func (o *Options) Validate() error {
	o.Format = ImageFormat(strings.ToLower(strings.TrimSpace(string(o.Format))))
	o.ReportFormat = ReportFormat(strings.ToLower(strings.TrimSpace(string(o.ReportFormat))))

	switch o.Format {
	case FormatJPEG, FormatPNG:
	case "jpg":
		o.Format = FormatJPEG
	default:
		return fmt.Errorf("%w: format %q (use jpeg or png)", ErrInvalidOption, o.Format)
	}

	switch o.ReportFormat {
	case ReportText, ReportJSON, ReportYAML:
	case "":
		o.ReportFormat = ReportText
	default:
		return fmt.Errorf("%w: report %q (use text, json or yaml)", ErrInvalidOption, o.ReportFormat)
	}

	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: quality %d (must be 1-100)", ErrInvalidOption, o.Quality)
	}
	if o.DPI < 0 {
		return fmt.Errorf("%w: dpi %d (must be positive, or 0 for auto)", ErrInvalidOption, o.DPI)
	}
	return nil
}
