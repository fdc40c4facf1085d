// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every stage of the pipeline. Callers wrap them
// with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrDependencyMissing = errors.New("required external tool not found")
	ErrExtraction        = errors.New("extraction failed")
	ErrEmptyDocument     = errors.New("no page images found")
	ErrWriteOutput       = errors.New("cannot write output")
	ErrInvalidOption     = errors.New("invalid option")
)

// FileError records the input file a failure belongs to. Op names the stage
// that failed ("resolve", "extract", "write", "analyze").
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// WrapFile attaches path and op to err. A nil err stays nil, and an error
// that already carries a FileError is returned unchanged.
func WrapFile(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FileError
	if errors.As(err, &fe) {
		return err
	}
	return &FileError{Path: path, Op: op, Err: err}
}
