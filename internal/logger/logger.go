package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level, encoding and destination of the process logger
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or a file path
	TimeFormat string
}

// New builds a zerolog logger. The returned closer releases the log file
// when Output is a path and is a no-op otherwise.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}

	var (
		output io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
		closer = file
	}
	return build(output, cfg.Format, cfg.TimeFormat, level), closer, nil
}

// NewWithWriter builds a logger writing to w; used by tests and tools
func NewWithWriter(w io.Writer, format, level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	return build(w, format, "", parsed)
}

func build(output io.Writer, format, timeFormat string, level zerolog.Level) zerolog.Logger {
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	if format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: timeFormat}
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// ForController returns a child logger tagged with a controller's identity
func ForController(l zerolog.Logger, id, connector, pair, interval string) zerolog.Logger {
	return l.With().
		Str("controller", id).
		Str("connector", connector).
		Str("trading_pair", pair).
		Str("interval", interval).
		Logger()
}

// SessionFilePath returns the per pair and interval log file of a day,
// e.g. logs/BTCUSDT_5m_2024-01-02.log
func SessionFilePath(dir, pair, interval string, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s.log", pair, interval, day.Format("2006-01-02")))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
