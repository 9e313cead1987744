// Package logging configures slog output for the process and builds the
// per-run and per-tenant log sinks.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the default logger. Warnings and errors only unless
// verbose is set.
func Init(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// NewRunLogger returns the logger for one extraction run, writing info and
// above (debug with verbose) to stderr and a rotating log file under dir.
func NewRunLogger(dir string, verbose bool) *slog.Logger {
	w := io.MultiWriter(os.Stderr, fileSink(filepath.Join(dir, "metapull.log")))
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: runLevel(verbose)}))
}

// ForTenant returns a logger whose lines are attributable to one tenant and
// routed to that tenant's own rotating log file in addition to stderr.
func ForTenant(dir, tenant string, verbose bool) *slog.Logger {
	w := io.MultiWriter(os.Stderr, fileSink(filepath.Join(dir, tenant+".log")))
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: runLevel(verbose)})
	return slog.New(handler).With(slog.String("tenant", tenant))
}

func runLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func fileSink(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}
