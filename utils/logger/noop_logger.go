package logger

// NoopLogger discards all log records. Useful for testing or when logging is disabled.
type NoopLogger struct{}

var _ Logger = (*NoopLogger)(nil)

// NewNoopLogger creates a new logger that discards all output
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (n *NoopLogger) Type() LoggerType {
	return LoggerTypeNoop
}

func (n *NoopLogger) Debug(string, ...any) {}

func (n *NoopLogger) Info(string, ...any) {}

func (n *NoopLogger) Warn(string, ...any) {}

func (n *NoopLogger) Error(string, ...any) {}

func (n *NoopLogger) With(...any) Logger {
	return n
}

func (n *NoopLogger) Close() error {
	return nil
}
