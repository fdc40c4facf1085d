// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zap logger shared by every stage: a console
// sink and, when requested, a log file receiving the same lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp layout of every log line.
const TimeLayout = "2006-01-02 15:04:05"

// Logger is a zap logger that owns its optional log file.
type Logger struct {
	*zap.Logger
	file *os.File
}

// New returns a Logger writing to console and, when logFile is non-empty,
// to logFile. The file is truncated on open; missing parent directories are
// created.
func New(console io.Writer, logFile string) (*Logger, error) {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(console)), zapcore.InfoLevel),
	}

	l := &Logger{}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.file = f
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(f), zapcore.InfoLevel))
	}

	l.Logger = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// Close flushes buffered entries and closes the log file, if any.
func (l *Logger) Close() error {
	err := l.Sync()
	if l.file != nil {
		err = multierr.Append(err, l.file.Close())
		l.file = nil
	}
	return err
}

// Sync flushes the logger. Errors syncing an unsyncable console (a pipe or
// terminal) are ignored.
func (l *Logger) Sync() error {
	if l.file == nil {
		return nil
	}
	return l.file.Sync()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeLevel:      levelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// levelEncoder writes "INFO:" so lines read "<time> INFO: <msg>".
func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(l.CapitalString() + ":")
}
