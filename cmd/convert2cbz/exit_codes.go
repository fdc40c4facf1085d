package main

import (
	"errors"
	"os"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// Exit codes for the convert2cbz CLI.
// 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Every file converted or skipped
	ExitGeneral    = 1 // Extraction or other per-file failure
	ExitUsage      = 2 // Invalid flags, config, or unsupported input
	ExitIO         = 3 // Input not found, output not writable
	ExitDependency = 4 // unrar or poppler missing
)

// exitCodeFor returns the exit code for err. Batch errors aggregate several
// failures; the most specific code among them wins, in the order below.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, types.ErrDependencyMissing) {
		return ExitDependency
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, types.ErrWriteOutput) {
		return ExitIO
	}

	if errors.Is(err, types.ErrInvalidOption) ||
		errors.Is(err, types.ErrUnsupportedFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
