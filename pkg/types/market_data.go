package types

import (
	"fmt"
	"sort"
	"time"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

// Standard candle column names
const (
	ColumnTimestamp = "timestamp"
	ColumnOpen      = "open"
	ColumnHigh      = "high"
	ColumnLow       = "low"
	ColumnClose     = "close"
	ColumnVolume    = "volume"
)

// DefaultMaxRecords is the default cap on the number of candles in a snapshot
const DefaultMaxRecords = 1000

type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// SnapshotMeta identifies where a snapshot's candles came from
type SnapshotMeta struct {
	Connector   string
	TradingPair string
	Interval    string
}

// Key returns the connector/pair/interval key used to partition work
func (m SnapshotMeta) Key() string {
	return fmt.Sprintf("%s:%s:%s", m.Connector, m.TradingPair, m.Interval)
}

// Snapshot is an ascending window of candles stored column by column.
// A snapshot is never modified after construction; slices returned by
// its accessors must be treated as read-only.
type Snapshot struct {
	meta       SnapshotMeta
	timestamps []time.Time
	columns    map[string][]float64
}

// NewSnapshot builds a snapshot from timestamps and named columns. Every
// column must have one value per timestamp and timestamps must be strictly
// ascending. When maxRecords > 0 only the most recent maxRecords rows are kept.
func NewSnapshot(meta SnapshotMeta, timestamps []time.Time, columns map[string][]float64, maxRecords int) (*Snapshot, error) {
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, sigerrors.NewSignalError(sigerrors.ErrorCategoryData, "snapshot", "new",
				fmt.Sprintf("timestamps not strictly ascending at row %d (%s after %s)",
					i, timestamps[i].Format(time.RFC3339), timestamps[i-1].Format(time.RFC3339)))
		}
	}
	for name, values := range columns {
		if len(values) != len(timestamps) {
			return nil, sigerrors.NewSignalError(sigerrors.ErrorCategoryData, "snapshot", "new",
				fmt.Sprintf("column %q has %d values, expected %d", name, len(values), len(timestamps)))
		}
	}

	start := 0
	if maxRecords > 0 && len(timestamps) > maxRecords {
		start = len(timestamps) - maxRecords
	}

	s := &Snapshot{
		meta:       meta,
		timestamps: append([]time.Time(nil), timestamps[start:]...),
		columns:    make(map[string][]float64, len(columns)),
	}
	for name, values := range columns {
		s.columns[name] = append([]float64(nil), values[start:]...)
	}
	return s, nil
}

// NewSnapshotFromCandles builds a snapshot with the standard OHLCV columns
func NewSnapshotFromCandles(meta SnapshotMeta, candles []OHLCV, maxRecords int) (*Snapshot, error) {
	n := len(candles)
	timestamps := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, c := range candles {
		timestamps[i] = c.Timestamp
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		closes[i] = c.Close
		volume[i] = c.Volume
	}
	return NewSnapshot(meta, timestamps, map[string][]float64{
		ColumnOpen:   open,
		ColumnHigh:   high,
		ColumnLow:    low,
		ColumnClose:  closes,
		ColumnVolume: volume,
	}, maxRecords)
}

// Meta returns the snapshot's origin
func (s *Snapshot) Meta() SnapshotMeta {
	return s.meta
}

// Len returns the number of rows
func (s *Snapshot) Len() int {
	return len(s.timestamps)
}

// Timestamps returns the row timestamps
func (s *Snapshot) Timestamps() []time.Time {
	return s.timestamps
}

// HasColumn reports whether the named column is present
func (s *Snapshot) HasColumn(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// Column returns the named input column or a MissingColumnError
func (s *Snapshot) Column(name string) ([]float64, error) {
	values, ok := s.columns[name]
	if !ok {
		return nil, sigerrors.NewMissingColumnError(name, sigerrors.StageInput)
	}
	return values, nil
}

// ColumnNames returns the names of the input columns in canonical order
// followed by any extra columns.
func (s *Snapshot) ColumnNames() []string {
	names := make([]string, 0, len(s.columns))
	seen := make(map[string]bool, len(s.columns))
	for _, name := range []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume} {
		if s.HasColumn(name) {
			names = append(names, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range s.columns {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// Candle returns row i as an OHLCV value; absent columns read as zero
func (s *Snapshot) Candle(i int) OHLCV {
	c := OHLCV{Timestamp: s.timestamps[i]}
	if v, ok := s.columns[ColumnOpen]; ok {
		c.Open = v[i]
	}
	if v, ok := s.columns[ColumnHigh]; ok {
		c.High = v[i]
	}
	if v, ok := s.columns[ColumnLow]; ok {
		c.Low = v[i]
	}
	if v, ok := s.columns[ColumnClose]; ok {
		c.Close = v[i]
	}
	if v, ok := s.columns[ColumnVolume]; ok {
		c.Volume = v[i]
	}
	return c
}

// Gaps returns the rows whose distance to the previous row is not step.
// Snapshots are not required to be evenly spaced; exchanges skip candles
// during outages, so callers decide whether gaps matter.
func (s *Snapshot) Gaps(step time.Duration) []int {
	var gaps []int
	for i := 1; i < len(s.timestamps); i++ {
		if s.timestamps[i].Sub(s.timestamps[i-1]) != step {
			gaps = append(gaps, i)
		}
	}
	return gaps
}

// Last returns the timestamp of the most recent row
func (s *Snapshot) Last() (time.Time, bool) {
	if len(s.timestamps) == 0 {
		return time.Time{}, false
	}
	return s.timestamps[len(s.timestamps)-1], true
}
