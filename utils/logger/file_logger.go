package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// FileLogger writes JSON records to a file opened with O_APPEND, so that
// several processes can share one log file.
type FileLogger struct {
	*slogLogger
	file *os.File
}

// NewFileLogger creates a new logger that writes to the specified file path.
// Returns an error if the file cannot be opened.
func NewFileLogger(path string, level slog.Level) (*FileLogger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	var once sync.Once
	var closeErr error
	closer := func() error {
		once.Do(func() { closeErr = file.Close() })
		return closeErr
	}

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return &FileLogger{
		slogLogger: newSlogLogger(LoggerTypeFile, handler, closer),
		file:       file,
	}, nil
}

// Path returns the path of the underlying file.
func (f *FileLogger) Path() string {
	return f.file.Name()
}
