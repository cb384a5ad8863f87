package controller

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

// IntervalDuration converts a candle interval such as "5m", "4h", "1d" or
// "1w" to its duration.
func IntervalDuration(interval string) (time.Duration, error) {
	interval = strings.TrimSpace(interval)
	if len(interval) < 2 {
		return 0, invalidInterval(interval)
	}

	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, invalidInterval(interval)
	}

	switch interval[len(interval)-1] {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h', 'H':
		return time.Duration(n) * time.Hour, nil
	case 'd', 'D':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w', 'W':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	}
	return 0, invalidInterval(interval)
}

func invalidInterval(interval string) error {
	return sigerrors.NewConfigurationError("controller", "interval", fmt.Sprintf("unsupported interval %q", interval))
}

// UntilNextClose returns how long after now the current candle of length d
// closes. Candles are aligned to the unix epoch in UTC.
func UntilNextClose(now time.Time, d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	now = now.UTC()
	next := now.Truncate(d).Add(d)
	return next.Sub(now)
}
