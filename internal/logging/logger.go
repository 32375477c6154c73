// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where the process logger writes.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Verbose sends colored records to Console instead of the log file.
	Verbose bool
	// Console receives verbose output; defaults to os.Stderr.
	Console io.Writer
	// Dir is the directory holding srodbpatch.log. Empty disables the file.
	Dir string
}

// New builds the process logger. Verbose runs get a tint console handler so
// the operator sees each SQL step; normal runs keep the terminal for pterm
// output and append JSON records to a rotated file instead.
func New(opts Options) (*slog.Logger, io.Closer) {
	level := parseLevel(opts.Level)

	if opts.Verbose {
		w := opts.Console
		if w == nil {
			w = os.Stderr
		}
		if level > slog.LevelDebug {
			level = slog.LevelDebug
		}
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})), nopCloser{}
	}

	if opts.Dir == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "srodbpatch.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})), file
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
