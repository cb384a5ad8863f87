package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// Header aliases folded onto the standard column names
var headerAliases = map[string]string{
	"time":       types.ColumnTimestamp,
	"date":       types.ColumnTimestamp,
	"datetime":   types.ColumnTimestamp,
	"open_time":  types.ColumnTimestamp,
	"start_time": types.ColumnTimestamp,
	"o":          types.ColumnOpen,
	"h":          types.ColumnHigh,
	"l":          types.ColumnLow,
	"c":          types.ColumnClose,
	"v":          types.ColumnVolume,
	"vol":        types.ColumnVolume,
}

// Date layouts accepted for non-numeric timestamps
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CSVProvider reads header-based candle CSV files. Any numeric column is
// kept; a missing volume or high/low column surfaces later as a missing
// column error from the evaluator that needs it.
type CSVProvider struct {
	logger     zerolog.Logger
	maxRecords int
}

// NewCSVProvider creates a new CSV data provider
func NewCSVProvider(logger zerolog.Logger) *CSVProvider {
	return &CSVProvider{logger: logger}
}

// WithMaxRecords keeps only the most recent n rows of every file read
func (p *CSVProvider) WithMaxRecords(n int) *CSVProvider {
	p.maxRecords = n
	return p
}

// Load reads the CSV file at path
func (p *CSVProvider) Load(path string, meta types.SnapshotMeta) (*types.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, sigerrors.NewSourceError("csv", "open", err).WithContext("path", path)
	}
	defer file.Close()

	snapshot, err := p.Read(file, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, nil
}

type csvRow struct {
	timestamp time.Time
	values    []float64
}

// Read parses CSV candles from r. Rows with an unreadable timestamp or
// value are skipped with a warning; empty cells read as NaN. Rows are
// sorted by time and duplicate timestamps keep the first occurrence.
func (p *CSVProvider) Read(r io.Reader, meta types.SnapshotMeta) (*types.Snapshot, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, sigerrors.NewDataError("csv", "read", "empty file")
		}
		return nil, sigerrors.NewDataError("csv", "read", fmt.Sprintf("invalid header: %v", err))
	}

	names, tsCol, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []csvRow
	skipped := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, sigerrors.NewDataError("csv", "read", fmt.Sprintf("line %d: %v", line, err))
		}

		row, err := parseRecord(record, names, tsCol)
		if err != nil {
			p.logger.Warn().Int("line", line).Err(err).Msg("Skipping CSV row")
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	rows = sortAndDedupe(rows)

	timestamps := make([]time.Time, len(rows))
	columns := make(map[string][]float64, len(names))
	for j, name := range names {
		if j == tsCol {
			continue
		}
		columns[name] = make([]float64, len(rows))
	}
	for i, row := range rows {
		timestamps[i] = row.timestamp
		for j, name := range names {
			if j == tsCol {
				continue
			}
			columns[name][i] = row.values[j]
		}
	}

	if skipped > 0 {
		p.logger.Warn().Int("skipped", skipped).Int("rows", len(rows)).Str("pair", meta.TradingPair).Msg("CSV rows skipped")
	}
	snapshot, err := types.NewSnapshot(meta, timestamps, columns, p.maxRecords)
	if err != nil {
		return nil, err
	}
	if step, ok := intervalStep(meta.Interval); ok {
		if gaps := snapshot.Gaps(step); len(gaps) > 0 {
			p.logger.Warn().Int("gaps", len(gaps)).
				Time("first", snapshot.Timestamps()[gaps[0]]).
				Str("pair", meta.TradingPair).Str("interval", meta.Interval).
				Msg("CSV candles are not evenly spaced")
		}
	}
	return snapshot, nil
}

// intervalStep is the candle spacing of interval; months have none
func intervalStep(interval string) (time.Duration, bool) {
	interval = strings.TrimSpace(interval)
	if len(interval) < 2 || strings.HasSuffix(interval, "M") {
		return 0, false
	}
	unit, ok := minutesPerUnit[strings.ToLower(interval)[len(interval)-1]]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n*unit) * time.Minute, true
}

func parseHeader(header []string) ([]string, int, error) {
	names := make([]string, len(header))
	tsCol := -1
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if name == "" {
			return nil, 0, sigerrors.NewDataError("csv", "read", fmt.Sprintf("empty header in column %d", i+1))
		}
		if seen[name] {
			return nil, 0, sigerrors.NewDataError("csv", "read", fmt.Sprintf("duplicate column %q", name))
		}
		seen[name] = true
		names[i] = name
		if name == types.ColumnTimestamp {
			tsCol = i
		}
	}
	if tsCol < 0 {
		return nil, 0, sigerrors.NewMissingColumnError(types.ColumnTimestamp, sigerrors.StageInput)
	}
	return names, tsCol, nil
}

func parseRecord(record, names []string, tsCol int) (csvRow, error) {
	if len(record) != len(names) {
		return csvRow{}, fmt.Errorf("expected %d fields, got %d", len(names), len(record))
	}

	ts, err := parseTimestamp(record[tsCol])
	if err != nil {
		return csvRow{}, err
	}

	values := make([]float64, len(record))
	for j, cell := range record {
		if j == tsCol {
			continue
		}
		cell = strings.TrimSpace(cell)
		if cell == "" {
			values[j] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return csvRow{}, fmt.Errorf("invalid %s %q", names[j], cell)
		}
		values[j] = v
	}
	return csvRow{timestamp: ts, values: values}, nil
}

// parseTimestamp accepts unix seconds, unix milliseconds or a date layout
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func sortAndDedupe(rows []csvRow) []csvRow {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].timestamp.Before(rows[j].timestamp)
	})
	out := rows[:0]
	for i, row := range rows {
		if i > 0 && row.timestamp.Equal(out[len(out)-1].timestamp) {
			continue
		}
		out = append(out, row)
	}
	return out
}
