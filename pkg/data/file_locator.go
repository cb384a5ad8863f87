package data

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Category directories searched per exchange, in order
var exchangeCategories = map[string][]string{
	"bybit":   {"linear", "spot", "inverse"},
	"binance": {"spot", "futures"},
}

var defaultCategories = []string{"spot", "futures", "linear", "inverse"}

var minutesPerUnit = map[byte]int{
	'm': 1,
	'h': 60,
	'd': 24 * 60,
	'w': 7 * 24 * 60,
}

// DefaultFileLocator finds candle files on the local file system
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// ConvertIntervalToMinutes maps "5m", "1h" or "1d" to a minute count
// directory name. Bare numbers pass through; anything unparseable is
// returned lower-cased.
func (f *DefaultFileLocator) ConvertIntervalToMinutes(interval string) string {
	if _, err := strconv.Atoi(interval); err == nil {
		return interval
	}

	interval = strings.ToLower(strings.TrimSpace(interval))
	if len(interval) < 2 {
		return interval
	}
	unit, ok := minutesPerUnit[interval[len(interval)-1]]
	if !ok {
		return interval
	}
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil {
		return interval
	}
	return strconv.Itoa(n * unit)
}

// FindDataFile looks for {dataRoot}/{exchange}/{category}/{symbol}/{minutes}/candles.csv
// across the categories of exchange and returns the first that exists, or
// an empty string.
func (f *DefaultFileLocator) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	symbol = strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
	minutes := f.ConvertIntervalToMinutes(interval)

	categories, ok := exchangeCategories[strings.ToLower(exchange)]
	if !ok {
		categories = defaultCategories
	}
	for _, category := range categories {
		path := filepath.Join(dataRoot, exchange, category, symbol, minutes, "candles.csv")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
