package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ducminhle1904/directional-signals/pkg/types"
)

var candleHeader = []string{
	types.ColumnTimestamp, types.ColumnOpen, types.ColumnHigh,
	types.ColumnLow, types.ColumnClose, types.ColumnVolume,
}

// CandlePath returns {dataRoot}/{exchange}/{category}/{symbol}/{minutes}/candles.csv,
// the layout FindDataFile searches.
func CandlePath(dataRoot, exchange, category, symbol, interval string) string {
	symbol = strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
	minutes := NewDefaultFileLocator().ConvertIntervalToMinutes(interval)
	return filepath.Join(dataRoot, strings.ToLower(exchange), strings.ToLower(category), symbol, minutes, "candles.csv")
}

// WriteCandlesCSV writes candles with a standard header, creating parent
// directories. Timestamps are written in UTC.
func WriteCandlesCSV(path string, candles []types.OHLCV) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(candleHeader); err != nil {
		return err
	}
	for _, c := range candles {
		record := []string{
			c.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
