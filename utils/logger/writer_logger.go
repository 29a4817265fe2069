package logger

import (
	"io"
	"log/slog"
)

// WriterLogger adapts any io.Writer to the Logger interface with JSON records.
// Thread safety depends on the underlying writer.
type WriterLogger struct {
	*slogLogger
}

// NewWriterLogger creates a logger from any io.Writer
func NewWriterLogger(w io.Writer, level slog.Level) *WriterLogger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &WriterLogger{newSlogLogger(LoggerTypeWriter, handler, nil)}
}
