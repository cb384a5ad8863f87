package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultOutputDir returns the results directory of a pair and interval,
// e.g. results/BTCUSDT_5m
func DefaultOutputDir(pair, interval string) string {
	p := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(pair), "-", ""))
	i := strings.TrimSpace(interval)
	if p == "" {
		p = "UNKNOWN"
	}
	if i == "" {
		i = "unknown"
	}
	return filepath.Join("results", fmt.Sprintf("%s_%s", p, i))
}

// EnsureDirectoryExists creates the parent directory of path
func EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

// ExtractIntervalFromPath finds the interval of a candle file path. Both
// "data/bybit/linear/BTCUSDT/5m/candles.csv" and the minute layout
// "data/bybit/linear/BTCUSDT/60/candles.csv" are understood.
func ExtractIntervalFromPath(dataPath string) string {
	if dataPath == "" {
		return ""
	}

	parts := strings.Split(filepath.ToSlash(dataPath), "/")
	for i := len(parts) - 2; i >= 0; i-- {
		part := parts[i]
		if len(part) >= 2 {
			switch part[len(part)-1] {
			case 'm', 'h', 'd', 'w':
				if _, err := strconv.Atoi(part[:len(part)-1]); err == nil {
					return part
				}
			}
		}
		if minutes, err := strconv.Atoi(part); err == nil && minutes > 0 {
			return minutesToInterval(minutes)
		}
	}
	return ""
}

func minutesToInterval(minutes int) string {
	switch {
	case minutes%(7*1440) == 0:
		return fmt.Sprintf("%dw", minutes/(7*1440))
	case minutes%1440 == 0:
		return fmt.Sprintf("%dd", minutes/1440)
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
