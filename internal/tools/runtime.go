// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools detects and drives the external executables convert2cbz
// relies on: an unrar-compatible decompressor for RAR archives and the
// poppler utilities for PDF rasterization.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, withStderr(err, stderr.String())
	}
	return out, nil
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return withStderr(err, stderr.String())
	}
	return nil
}

// withStderr appends the first line of a tool's stderr to err.
func withStderr(err error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		return err
	}
	if i := strings.IndexByte(msg, '\n'); i > 0 {
		msg = msg[:i]
	}
	return fmt.Errorf("%w: %s", err, msg)
}

var defaultExec executor = &osExecutor{}

// lookFirst returns the first of bins found on PATH. The error wraps
// types.ErrDependencyMissing and names every candidate.
func lookFirst(exec executor, bins ...string) (string, error) {
	for _, bin := range bins {
		if _, err := exec.LookPath(bin); err == nil {
			return bin, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s found on PATH", types.ErrDependencyMissing, strings.Join(bins, ", "))
}
