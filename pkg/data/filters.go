package data

import (
	"time"

	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// FilterByPeriod keeps the rows within period of the latest timestamp
func FilterByPeriod(snapshot *types.Snapshot, period time.Duration) (*types.Snapshot, error) {
	last, ok := snapshot.Last()
	if period <= 0 || !ok {
		return snapshot, nil
	}
	return FilterByDateRange(snapshot, last.Add(-period), last)
}

// FilterByDateRange keeps the rows with start <= timestamp <= end. A zero
// start or end leaves that side open.
func FilterByDateRange(snapshot *types.Snapshot, start, end time.Time) (*types.Snapshot, error) {
	timestamps := snapshot.Timestamps()
	from, to := 0, len(timestamps)
	for from < to && !start.IsZero() && timestamps[from].Before(start) {
		from++
	}
	for to > from && !end.IsZero() && timestamps[to-1].After(end) {
		to--
	}
	if from == 0 && to == len(timestamps) {
		return snapshot, nil
	}

	names := snapshot.ColumnNames()
	columns := make(map[string][]float64, len(names))
	for _, name := range names {
		values, err := snapshot.Column(name)
		if err != nil {
			return nil, err
		}
		columns[name] = values[from:to]
	}
	return types.NewSnapshot(snapshot.Meta(), timestamps[from:to], columns, 0)
}
