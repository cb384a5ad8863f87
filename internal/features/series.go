package features

import (
	"math"
	"time"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// Series column names shared by every family
const (
	ColumnSignal    = "signal"
	ColumnIntensity = "signal_intensity"
)

// Feature value keys shared by every family
const (
	ValueSignal    = "signal"
	ValueIntensity = "intensity"
	ValuePrice     = "price"
)

// Row is one evaluated bar. Values are aligned with the derived column
// names of the calculator that produced it.
type Row struct {
	Index     int
	Timestamp time.Time
	Close     float64
	Values    []float64
	Direction Direction
	Intensity float64
}

// Value returns the named derived value of the row
func (r Row) Value(columns []string, name string) float64 {
	for i, c := range columns {
		if c == name {
			return r.Values[i]
		}
	}
	return math.NaN()
}

// AnnotatedSeries is a snapshot together with the derived columns of one
// calculator. It never modifies the snapshot it was computed from.
type AnnotatedSeries struct {
	snapshot    *types.Snapshot
	names       []string
	derived     map[string][]float64
	directions  []Direction
	intensities []float64
}

func newAnnotatedSeries(snapshot *types.Snapshot, names []string) *AnnotatedSeries {
	n := snapshot.Len()
	a := &AnnotatedSeries{
		snapshot:    snapshot,
		names:       names,
		derived:     make(map[string][]float64, len(names)),
		directions:  make([]Direction, 0, n),
		intensities: make([]float64, 0, n),
	}
	for _, name := range names {
		a.derived[name] = make([]float64, 0, n)
	}
	return a
}

func (a *AnnotatedSeries) append(row Row) {
	for i, name := range a.names {
		a.derived[name] = append(a.derived[name], row.Values[i])
	}
	a.directions = append(a.directions, row.Direction)
	a.intensities = append(a.intensities, row.Intensity)
}

// Snapshot returns the input snapshot
func (a *AnnotatedSeries) Snapshot() *types.Snapshot {
	return a.snapshot
}

// Len returns the number of rows
func (a *AnnotatedSeries) Len() int {
	return len(a.directions)
}

// DerivedNames returns the derived indicator columns in order
func (a *AnnotatedSeries) DerivedNames() []string {
	return a.names
}

// ColumnNames returns input, derived and signal columns in display order
func (a *AnnotatedSeries) ColumnNames() []string {
	names := append([]string{}, a.snapshot.ColumnNames()...)
	names = append(names, a.names...)
	return append(names, ColumnSignal, ColumnIntensity)
}

// Column returns a derived, signal or input column. Unknown names yield a
// MissingColumnError.
func (a *AnnotatedSeries) Column(name string) ([]float64, error) {
	if values, ok := a.derived[name]; ok {
		return values, nil
	}
	switch name {
	case ColumnSignal:
		out := make([]float64, len(a.directions))
		for i, d := range a.directions {
			out[i] = float64(d)
		}
		return out, nil
	case ColumnIntensity:
		return a.intensities, nil
	}
	if a.snapshot.HasColumn(name) {
		return a.snapshot.Column(name)
	}
	return nil, sigerrors.NewMissingColumnError(name, sigerrors.StageDerived)
}

// Directions returns the discrete signal column
func (a *AnnotatedSeries) Directions() []Direction {
	return a.directions
}

// Intensities returns the intensity column
func (a *AnnotatedSeries) Intensities() []float64 {
	return a.intensities
}

// Row rebuilds bar i
func (a *AnnotatedSeries) Row(i int) Row {
	row := Row{
		Index:     i,
		Timestamp: a.snapshot.Timestamps()[i],
		Close:     a.snapshot.Candle(i).Close,
		Values:    make([]float64, len(a.names)),
		Direction: a.directions[i],
		Intensity: a.intensities[i],
	}
	for j, name := range a.names {
		row.Values[j] = a.derived[name][i]
	}
	return row
}

// Latest returns the last row. ok is false for an empty series.
func (a *AnnotatedSeries) Latest() (row Row, ok bool) {
	if a.Len() == 0 {
		return Row{}, false
	}
	return a.Row(a.Len() - 1), true
}

// Evaluation returns the evaluation of the last row
func (a *AnnotatedSeries) Evaluation() Evaluation {
	n := a.Len()
	if n == 0 {
		return Evaluation{}
	}
	return Evaluation{Direction: a.directions[n-1], Intensity: a.intensities[n-1]}
}
