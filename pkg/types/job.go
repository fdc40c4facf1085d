// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionStatus is the outcome of processing one input file.
type ConversionStatus string

const (
	ConversionDone     ConversionStatus = "converted"
	ConversionSkipped  ConversionStatus = "skipped"
	ConversionAnalyzed ConversionStatus = "analyzed"
	ConversionFailed   ConversionStatus = "failed"
)

// Job describes the conversion of a single input file. It is created when
// the file is picked up and discarded once its CBZ is written.
type Job struct {
	// ID correlates the log lines of one job.
	ID string `json:"id" yaml:"id"`

	// Input is the source document path.
	Input string `json:"input" yaml:"input"`

	// Kind is the document kind inferred from Input.
	Kind DocumentKind `json:"kind" yaml:"kind"`

	// Output is the destination CBZ path.
	Output string `json:"output" yaml:"output"`

	// Options are the effective settings for this job.
	Options Options `json:"options" yaml:"options"`
}
