package logger

import (
	"log/slog"
	"os"
)

// StdoutLogger writes human-readable text records to stdout.
// Safe for concurrent use across goroutines.
type StdoutLogger struct {
	*slogLogger
}

// NewStdoutLogger creates a new logger that writes to stdout at level
func NewStdoutLogger(level slog.Level) *StdoutLogger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &StdoutLogger{newSlogLogger(LoggerTypeStdout, handler, nil)}
}
