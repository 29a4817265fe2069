package logger

import (
	"errors"
	"log/slog"
)

// Logger is the structured logging interface used across turbo-exec.
// All implementations must be safe for concurrent use across multiple goroutines.
type Logger interface {
	// Type returns the type of the logger
	Type() LoggerType
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a logger that adds args to every record
	With(args ...any) Logger
	// Close releases the logger's destination
	Close() error
}

type LoggerType string

const (
	LoggerTypeStdout LoggerType = "stdout"
	LoggerTypeFile   LoggerType = "file"
	LoggerTypeNoop   LoggerType = "noop"
	LoggerTypeWriter LoggerType = "writer"
	LoggerTypeMulti  LoggerType = "multi"
)

// slogLogger carries the slog plumbing shared by the concrete loggers.
type slogLogger struct {
	logger *slog.Logger
	kind   LoggerType
	closer func() error
}

var _ Logger = (*slogLogger)(nil)

func newSlogLogger(kind LoggerType, handler slog.Handler, closer func() error) *slogLogger {
	return &slogLogger{
		logger: slog.New(handler),
		kind:   kind,
		closer: closer,
	}
}

func (s *slogLogger) Type() LoggerType {
	return s.kind
}

func (s *slogLogger) Debug(msg string, args ...any) {
	s.logger.Debug(msg, args...)
}

func (s *slogLogger) Info(msg string, args ...any) {
	s.logger.Info(msg, args...)
}

func (s *slogLogger) Warn(msg string, args ...any) {
	s.logger.Warn(msg, args...)
}

func (s *slogLogger) Error(msg string, args ...any) {
	s.logger.Error(msg, args...)
}

// With shares the destination; closing the derived logger closes it too.
func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: s.logger.With(args...),
		kind:   s.kind,
		closer: s.closer,
	}
}

func (s *slogLogger) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// MultiLogger writes to multiple loggers simultaneously.
// Safe for concurrent use if all underlying loggers are safe.
type MultiLogger struct {
	loggers []Logger
}

var _ Logger = (*MultiLogger)(nil)

// NewMultiLogger creates a logger that writes to multiple destinations
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{
		loggers: loggers,
	}
}

func (m *MultiLogger) Type() LoggerType {
	return LoggerTypeMulti
}

func (m *MultiLogger) Debug(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Debug(msg, args...)
	}
}

func (m *MultiLogger) Info(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Info(msg, args...)
	}
}

func (m *MultiLogger) Warn(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Warn(msg, args...)
	}
}

func (m *MultiLogger) Error(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Error(msg, args...)
	}
}

func (m *MultiLogger) With(args ...any) Logger {
	loggers := make([]Logger, len(m.loggers))
	for i, l := range m.loggers {
		loggers[i] = l.With(args...)
	}
	return &MultiLogger{loggers: loggers}
}

// Close closes every underlying logger and joins their errors.
func (m *MultiLogger) Close() error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
