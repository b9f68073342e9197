// Package logging builds the pslog loggers used across tabshelf.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

// Discard returns a logger that drops everything. Components fall back to it
// when constructed without a logger.
func Discard() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.ErrorLevel,
	})
}

// OrDiscard returns logger, or a discarding logger when logger is nil.
func OrDiscard(logger pslog.Logger) pslog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

// Options builds structured pslog options for the named level. Unknown levels
// fall back to info.
func Options(level string) pslog.Options {
	opts := pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
		MinLevel:      pslog.InfoLevel,
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	}
	return opts
}

// OpenFile opens (or creates) the log file at path and returns a structured
// logger writing to it. The returned closer releases the file.
func OpenFile(path, level string) (pslog.Logger, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return pslog.NewWithOptions(file, Options(level)), file, nil
}
