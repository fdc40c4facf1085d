// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/convert2cbz/internal/convert"
	"github.com/pdiddy/convert2cbz/internal/extract"
	"github.com/pdiddy/convert2cbz/internal/logging"
	"github.com/pdiddy/convert2cbz/internal/resolve"
	"github.com/pdiddy/convert2cbz/pkg/types"
)

// Viper keys. Config files and CONVERT2CBZ_* variables use the same names.
const (
	keyOutput       = "output"
	keyDPI          = "dpi"
	keyQuality      = "quality"
	keyFormat       = "format"
	keyLogFile      = "logfile"
	keyAnalyze      = "analyze"
	keyRecursive    = "recursive"
	keySkipExisting = "skip_existing"
	keyReport       = "report"
)

func registerConvertFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("output", "o", "", "output directory, or output .cbz file for a single input (default: next to each input)")
	f.IntP("dpi", "d", 0, "PDF rendering DPI (default: derived from page widths, at least 100)")
	f.IntP("quality", "q", types.DefaultQuality, "JPEG quality for PDF pages, 1-100")
	f.StringP("format", "f", string(types.FormatPNG), "image format for PDF pages: jpeg or png")
	f.StringP("logfile", "l", "", "also write the log to this file")
	f.BoolP("analyze", "a", false, "report page count, formats and DPI instead of converting")
	f.BoolP("recursive", "r", false, "descend into subdirectories when path is a directory")
	f.Bool("skip-existing", false, "leave inputs whose CBZ already exists untouched")
	f.String("report", string(types.ReportText), "analyze report format: text, json or yaml")

	for key, flag := range map[string]string{
		keyOutput:       "output",
		keyDPI:          "dpi",
		keyQuality:      "quality",
		keyFormat:       "format",
		keyLogFile:      "logfile",
		keyAnalyze:      "analyze",
		keyRecursive:    "recursive",
		keySkipExisting: "skip-existing",
		keyReport:       "report",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func pathArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected one path, got %d (see --help)", types.ErrInvalidOption, len(args))
	}
	return nil
}

func flagError(cmd *cobra.Command, err error) error {
	return fmt.Errorf("%w: %v", types.ErrInvalidOption, err)
}

// loadOptions builds validated options from v. Keys nobody set keep the
// values of types.DefaultOptions.
func loadOptions(v *viper.Viper) (types.Options, error) {
	opts := types.DefaultOptions()
	v.SetDefault(keyQuality, opts.Quality)
	v.SetDefault(keyFormat, string(opts.Format))
	v.SetDefault(keyReport, string(opts.ReportFormat))

	opts.DPI = v.GetInt(keyDPI)
	opts.Quality = v.GetInt(keyQuality)
	opts.Format = types.ImageFormat(v.GetString(keyFormat))
	opts.LogFile = v.GetString(keyLogFile)
	opts.Analyze = v.GetBool(keyAnalyze)
	opts.Recursive = v.GetBool(keyRecursive)
	opts.SkipExisting = v.GetBool(keySkipExisting)
	opts.ReportFormat = types.ReportFormat(v.GetString(keyReport))
	applyOutput(&opts, v.GetString(keyOutput))

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// applyOutput interprets -o: a path ending in .cbz names the output file,
// anything else is the output directory.
func applyOutput(opts *types.Options, out string) {
	out = resolve.CleanPath(out)
	if out == "" {
		return
	}
	if strings.EqualFold(filepath.Ext(out), ".cbz") {
		opts.OutputFile = out
		return
	}
	opts.OutputDir = out
}

// batchError reports a run in which some files failed. The per-file errors
// are already logged; Unwrap exposes them for exit code mapping.
type batchError struct {
	failed, total int
	interrupted   bool
	err           error
}

func (e *batchError) Error() string {
	switch {
	case e.interrupted:
		return fmt.Sprintf("interrupted after %d files (%d failed)", e.total, e.failed)
	case e.total <= 1:
		return e.err.Error()
	default:
		return fmt.Sprintf("%d of %d files failed", e.failed, e.total)
	}
}

func (e *batchError) Unwrap() error { return e.err }

func runConvert(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidOption, configErr)
	}
	opts, err := loadOptions(viper.GetViper())
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stderr, opts.LogFile)
	if err != nil {
		return err
	}
	defer log.Close()

	path := resolve.CleanPath(args[0])
	log.Info("Starting",
		zap.String("path", path),
		zap.String("version", version),
		zap.Bool("analyze", opts.Analyze),
	)

	c := convert.New(extract.SystemTools(), log.Logger, cmd.OutOrStdout())
	result := c.Run(cmd.Context(), path, opts)
	if result.HasFailures() || result.Interrupted {
		return &batchError{failed: result.Failed, total: result.Total(), interrupted: result.Interrupted, err: result.Err}
	}
	return nil
}
