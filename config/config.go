package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/FrenchMajesty/turbo-exec/utils/logger"
	"github.com/sosodev/duration"
)

const (
	EnvDev        = "dev"
	EnvTesting    = "testing"
	EnvProduction = "production"

	defaultEnv     = EnvProduction
	defaultRetries = 3
	defaultTimeout = 30 * time.Second

	envEnv          = "TURBO_EXEC_ENV"
	envLogLevel     = "TURBO_EXEC_LOG_LEVEL"
	envLogFile      = "TURBO_EXEC_LOG_FILE"
	envRetries      = "TURBO_EXEC_RETRIES"
	envTimeout      = "TURBO_EXEC_TIMEOUT"
	envWorkers      = "TURBO_EXEC_WORKERS"
	envOpenAIAPIKey = "OPENAI_API_KEY"
	envModel        = "TURBO_EXEC_MODEL"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Env      string
	LogLevel slog.Level
	LogFile  string

	// Retries is the retry budget of each execution.
	Retries int
	// Timeout bounds each attempt. Zero disables it.
	Timeout time.Duration
	// Workers sizes the background worker pool. Zero runs every background
	// execution on its own goroutine.
	Workers int

	OpenAIAPIKey string
	Model        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:      defaultEnv,
		LogLevel: slog.LevelInfo,
		Retries:  defaultRetries,
		Timeout:  defaultTimeout,
	}

	if v := os.Getenv(envEnv); v != "" {
		switch env := strings.ToLower(v); env {
		case EnvDev, EnvTesting, EnvProduction:
			cfg.Env = env
		default:
			return Config{}, fmt.Errorf("%s: unknown environment %q", envEnv, v)
		}
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	} else if cfg.Env == EnvDev {
		cfg.LogLevel = slog.LevelDebug
	}
	cfg.LogFile = os.Getenv(envLogFile)

	if v := os.Getenv(envRetries); v != "" {
		n, err := parseNonNegative(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envRetries, err)
		}
		cfg.Retries = n
	}
	if v := os.Getenv(envTimeout); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv(envWorkers); v != "" {
		n, err := parseNonNegative(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envWorkers, err)
		}
		cfg.Workers = n
	}

	cfg.OpenAIAPIKey = os.Getenv(envOpenAIAPIKey)
	cfg.Model = os.Getenv(envModel)

	return cfg, nil
}

// NewLogger builds the application logger: stdout (silent in the testing
// environment), plus a JSON file when LogFile is set.
func (c Config) NewLogger() (logger.Logger, error) {
	var base logger.Logger = logger.NewStdoutLogger(c.LogLevel)
	if c.Env == EnvTesting {
		base = logger.NewNoopLogger()
	}

	if c.LogFile == "" {
		return base, nil
	}

	fileLogger, err := logger.NewFileLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(base, fileLogger), nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseDuration accepts Go durations ("1m30s") and ISO 8601 durations ("PT1M30S").
func parseDuration(s string) (time.Duration, error) {
	if strings.HasPrefix(strings.ToUpper(s), "P") {
		d, err := duration.Parse(strings.ToUpper(s))
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", s, err)
		}
		if d.Negative {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return d.ToTimeDuration(), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return n, nil
}
