// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives a run: it resolves the input path into documents,
// turns each one into a CBZ (or an analyzer report) and accounts for the
// outcome of every file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pdiddy/convert2cbz/internal/analyze"
	"github.com/pdiddy/convert2cbz/internal/cbz"
	"github.com/pdiddy/convert2cbz/internal/extract"
	"github.com/pdiddy/convert2cbz/internal/resolve"
	"github.com/pdiddy/convert2cbz/pkg/types"
)

// BatchResult holds the outcome of a run.
type BatchResult struct {
	Converted int
	Skipped   int
	Analyzed  int
	Failed    int

	// Bytes is the total size of the archives written.
	Bytes int64

	// Interrupted is set when ctx was cancelled before every file was
	// processed.
	Interrupted bool

	// Err aggregates the per-file failures and the cancellation cause.
	Err error
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Analyzed + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) fail(err error) {
	r.Failed++
	r.Err = multierr.Append(r.Err, err)
}

// Converter processes documents with a fixed set of external tools.
type Converter struct {
	tools  extract.Toolbox
	log    *zap.Logger
	report io.Writer
}

// New returns a Converter. Analyzer reports are written to report.
func New(tb extract.Toolbox, log *zap.Logger, report io.Writer) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{tools: tb, log: log, report: report}
}

// NewJob describes the processing of input. OutputFile is honored only for
// single-file runs; otherwise the CBZ goes to OutputDir (or next to input).
func NewJob(input string, opts types.Options, single bool) types.Job {
	out := cbz.OutputPath(input, opts.OutputDir)
	if single && opts.OutputFile != "" {
		out = opts.OutputFile
	}
	return types.Job{
		ID:      uuid.NewString(),
		Input:   input,
		Kind:    types.KindOf(input),
		Output:  out,
		Options: opts,
	}
}

// Run processes every document under path. Per-file failures are logged and
// counted; the batch continues. Unsupported files met while scanning a
// directory are skipped, while an unsupported single file is a failure.
// Cancelling ctx stops the batch; files not yet started are not counted.
func (c *Converter) Run(ctx context.Context, path string, opts types.Options) BatchResult {
	var result BatchResult

	info, err := os.Stat(path)
	if err != nil {
		result.fail(types.WrapFile("resolve", path, err))
		c.log.Error("Input not found", zap.String("file", path), zap.Error(err))
		return result
	}
	single := !info.IsDir()

	first := true
	for cand, err := range resolve.Resolve(path, opts.Recursive) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// cand was never started; the interrupted file, if any, is
			// already counted as failed.
			result.Interrupted = true
			if !errors.Is(result.Err, ctxErr) {
				result.Err = multierr.Append(result.Err, ctxErr)
			}
			c.log.Warn("Interrupted", zap.String("next", cand.Path), zap.Error(ctxErr))
			break
		}
		if err != nil {
			if errors.Is(err, types.ErrUnsupportedFormat) && !single {
				result.Skipped++
				c.log.Warn("Skipping unsupported file", zap.String("file", cand.Path))
				continue
			}
			result.fail(types.WrapFile("resolve", cand.Path, err))
			c.log.Error("Cannot read input", zap.String("file", cand.Path), zap.Error(err))
			continue
		}

		job := NewJob(cand.Path, opts, single)
		var status types.ConversionStatus
		if opts.Analyze {
			status, err = c.AnalyzeFile(ctx, job, first)
			if status == types.ConversionAnalyzed {
				first = false
			}
		} else {
			var size int64
			status, size, err = c.ConvertFile(ctx, job)
			result.Bytes += size
		}

		switch status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionAnalyzed:
			result.Analyzed++
		case types.ConversionFailed:
			result.fail(err)
		}
	}

	if !single || result.Total() > 1 {
		c.summary(result, opts.Analyze)
	}
	return result
}

// ConvertFile extracts the job's document and writes its CBZ. It returns the
// status, the size of the archive written and, on failure, an error
// carrying the input path.
func (c *Converter) ConvertFile(ctx context.Context, job types.Job) (types.ConversionStatus, int64, error) {
	log := c.log.With(zap.String("job", job.ID), zap.String("file", job.Input))

	if job.Options.SkipExisting {
		if _, err := os.Stat(job.Output); err == nil {
			log.Info("Skipped, output exists", zap.String("output", job.Output))
			return types.ConversionSkipped, 0, nil
		}
	}

	log.Info("Converting", zap.Stringer("kind", job.Kind))
	ex, err := extract.ForKind(job.Kind, c.tools)
	if err != nil {
		return c.failed(log, "extract", job, err)
	}
	doc, err := ex.Extract(ctx, job.Input, job.Options)
	if err != nil {
		return c.failed(log, "extract", job, err)
	}
	if len(doc.Pages) == 0 {
		return c.failed(log, "extract", job, fmt.Errorf("%w: %s", types.ErrEmptyDocument, job.Input))
	}

	if err := cbz.Write(job.Output, doc.Stem(), doc.Pages); err != nil {
		return c.failed(log, "write", job, err)
	}

	var size int64
	if fi, err := os.Stat(job.Output); err == nil {
		size = fi.Size()
	}
	log.Info("Converted",
		zap.Int("pages", len(doc.Pages)),
		zap.String("output", job.Output),
		zap.String("size", humanize.Bytes(uint64(size))),
	)
	return types.ConversionDone, size, nil
}

// AnalyzeFile writes the analyzer report of the job's document. first marks
// the first report of the run, which gets no separator.
func (c *Converter) AnalyzeFile(ctx context.Context, job types.Job, first bool) (types.ConversionStatus, error) {
	log := c.log.With(zap.String("job", job.ID), zap.String("file", job.Input))
	log.Info("Analyzing", zap.Stringer("kind", job.Kind))

	r, err := analyze.New(c.tools).Analyze(ctx, job.Input, job.Options)
	if err != nil {
		status, _, err := c.failed(log, "analyze", job, err)
		return status, err
	}

	if !first {
		sep := "\n"
		if job.Options.ReportFormat == types.ReportYAML {
			sep = "---\n"
		}
		if _, err := io.WriteString(c.report, sep); err != nil {
			status, _, err := c.failed(log, "analyze", job, err)
			return status, err
		}
	}
	if err := analyze.Write(c.report, r, job.Options.ReportFormat); err != nil {
		status, _, err := c.failed(log, "analyze", job, err)
		return status, err
	}
	return types.ConversionAnalyzed, nil
}

func (c *Converter) failed(log *zap.Logger, op string, job types.Job, err error) (types.ConversionStatus, int64, error) {
	err = types.WrapFile(op, job.Input, err)
	log.Error("Failed", zap.String("op", op), zap.Error(err))
	return types.ConversionFailed, 0, err
}

func (c *Converter) summary(r BatchResult, analyzeMode bool) {
	var parts []string
	if analyzeMode {
		parts = append(parts, fmt.Sprintf("%d analyzed", r.Analyzed))
	} else {
		parts = append(parts, fmt.Sprintf("%d converted", r.Converted))
	}
	parts = append(parts,
		fmt.Sprintf("%d skipped", r.Skipped),
		fmt.Sprintf("%d failed", r.Failed),
	)
	fields := []zap.Field{zap.Int("total", r.Total())}
	if r.Bytes > 0 {
		fields = append(fields, zap.String("written", humanize.Bytes(uint64(r.Bytes))))
	}
	c.log.Info("Batch summary: "+strings.Join(parts, ", "), fields...)
}
