// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	binUnrar = "unrar"
	binRar   = "rar"
)

// RAR drives an unrar-compatible executable. Both unrar and rar accept the
// same list and extract commands, so they share this implementation.
type RAR struct {
	bin  string
	exec executor
}

// DetectRAR looks for unrar first and falls back to rar. The error wraps
// types.ErrDependencyMissing when neither is installed.
func DetectRAR() (*RAR, error) {
	return detectRAR(defaultExec)
}

func detectRAR(exec executor) (*RAR, error) {
	bin, err := lookFirst(exec, binUnrar, binRar)
	if err != nil {
		return nil, err
	}
	return &RAR{bin: bin, exec: exec}, nil
}

// Name returns the executable name in use.
func (r *RAR) Name() string { return r.bin }

// List returns the archive entry names in the order they are stored,
// directories included. Names use forward slashes.
func (r *RAR) List(ctx context.Context, archive string) ([]string, error) {
	out, err := r.exec.Output(ctx, r.bin, "lb", "-p-", archive)
	if err != nil {
		return nil, fmt.Errorf("listing %s with %s: %w", archive, r.bin, err)
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		name := strings.TrimRight(line, "\r")
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, filepath.ToSlash(name))
	}
	return names, nil
}

// Extract unpacks archive into dest, preserving the stored paths.
func (r *RAR) Extract(ctx context.Context, archive, dest string) error {
	// unrar treats the destination as a directory only with a trailing separator.
	destDir := strings.TrimRight(dest, string(filepath.Separator)) + string(filepath.Separator)
	if err := r.exec.Run(ctx, r.bin, "x", "-o+", "-y", "-p-", "-idq", archive, destDir); err != nil {
		return fmt.Errorf("extracting %s with %s: %w", archive, r.bin, err)
	}
	return nil
}
