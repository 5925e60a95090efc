package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
}

// FileConfig controls the optional rotating log file.
type FileConfig struct {
	Enabled       bool
	Dir           string
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	Compress      bool
	WriteToStderr bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New creates a new zerolog logger writing to stderr
func New(cfg Config) zerolog.Logger {
	return newWithWriter(cfg, os.Stderr)
}

func newWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	output := w
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: cfg.TimeFormat,
		}
	}

	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// NewFromConfigValues creates a logger from plain config strings.
func NewFromConfigValues(level, format string) zerolog.Logger {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	if format == "json" || format == "console" {
		cfg.Format = format
	}
	return New(cfg)
}

// NewFromEnv creates a logger based on environment variables
// PERMSTORE_LOG_LEVEL: trace, debug, info, warn, error (default: info)
// PERMSTORE_LOG_FORMAT: json, console (default: console)
func NewFromEnv() zerolog.Logger {
	return NewFromConfigValues(os.Getenv("PERMSTORE_LOG_LEVEL"), os.Getenv("PERMSTORE_LOG_FORMAT"))
}

// NewWithFile creates a logger that writes to a rotating file in fileCfg.Dir,
// and to stderr when requested or when the file is disabled.
// The returned cleanup closes the file.
func NewWithFile(cfg Config, fileCfg FileConfig) (zerolog.Logger, func(), error) {
	if !fileCfg.Enabled {
		if !fileCfg.WriteToStderr {
			return newWithWriter(cfg, io.Discard), func() {}, nil
		}
		return New(cfg), func() {}, nil
	}

	rotator, err := NewLogRotator(RotatorConfig{
		Dir:        fileCfg.Dir,
		BaseName:   "permstore.log",
		MaxSizeMB:  fileCfg.MaxSizeMB,
		MaxBackups: fileCfg.MaxBackups,
		MaxAgeDays: fileCfg.MaxAgeDays,
		Compress:   fileCfg.Compress,
	})
	if err != nil {
		return New(cfg), func() {}, err
	}

	// the file always gets JSON lines
	var w io.Writer
	if fileCfg.WriteToStderr {
		var stderr io.Writer = os.Stderr
		if cfg.Format == "console" {
			stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat}
		}
		w = zerolog.MultiLevelWriter(rotator, stderr)
	} else {
		w = rotator
	}

	logger := zerolog.New(w).Level(cfg.Level).With().Timestamp().Logger()
	cleanup := func() {
		_ = rotator.Close()
	}
	return logger, cleanup, nil
}
