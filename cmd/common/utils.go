package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ducminhle1904/directional-signals/internal/logger"
	"github.com/ducminhle1904/directional-signals/pkg/config"
)

// NewLogger builds the process logger from the environment settings; verbose
// forces debug level.
func NewLogger(cfg *config.AppConfig, verbose bool) (zerolog.Logger, io.Closer, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{
		Level:  level,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
	})
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ParseDuration parses a Go duration or a day ("30d") or week ("2w") count
func ParseDuration(str string) (time.Duration, error) {
	str = strings.ToLower(strings.TrimSpace(str))

	for _, unit := range []struct {
		suffixes []string
		size     time.Duration
	}{
		{[]string{"days", "d"}, 24 * time.Hour},
		{[]string{"weeks", "w"}, 7 * 24 * time.Hour},
	} {
		for _, suffix := range unit.suffixes {
			if !strings.HasSuffix(str, suffix) {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSuffix(str, suffix))
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", str)
			}
			return time.Duration(n) * unit.size, nil
		}
	}
	return time.ParseDuration(str)
}

// ParseDate parses YYYY-MM-DD or RFC3339; an empty string is the zero time
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
