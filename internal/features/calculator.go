package features

import (
	"fmt"
	"math"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// Calculator is implemented by every indicator family. Calculators hold
// only their configuration; each call recomputes from the snapshot it is
// given, so one calculator may serve any number of goroutines.
type Calculator interface {
	Kind() config.Kind
	Name() string
	SignalName() string
	Category() string
	Columns() []string
	WarmupPeriod() int

	// Compute returns a new series with the derived, signal and intensity
	// columns of every row of the snapshot.
	Compute(snapshot *types.Snapshot) (*AnnotatedSeries, error)
	// Evaluate returns the direction and intensity of the latest row.
	Evaluate(snapshot *types.Snapshot) (Evaluation, error)
	CreateFeature(snapshot *types.Snapshot) (*Feature, error)
	// CreateSignal returns nil when the latest row has no direction or its
	// intensity is below minIntensity.
	CreateSignal(snapshot *types.Snapshot, minIntensity float64) (*Signal, error)

	FeatureFromSeries(series *AnnotatedSeries) *Feature
	SignalFromSeries(series *AnnotatedSeries, minIntensity float64) *Signal
	NewStream(meta types.SnapshotMeta) *Stream
}

// stepper advances a family's indicators by one bar, writes the derived
// values into out and returns the unmasked direction and intensity.
type stepper interface {
	step(c types.OHLCV, out []float64) (Direction, float64)
}

// definition is the static description of a configured family
type definition struct {
	kind        config.Kind
	featureName string
	signalName  string
	category    string
	description string
	interval    string
	columns     []string
	required    []string
	warmup      int
	info        map[string]interface{}
	newStepper  func() stepper
}

// base implements Calculator on top of a definition
type base struct {
	def *definition
}

func (b *base) Kind() config.Kind { return b.def.kind }
func (b *base) Name() string { return b.def.featureName }
func (b *base) SignalName() string { return b.def.signalName }
func (b *base) Category() string { return b.def.category }
func (b *base) Columns() []string { return b.def.columns }
func (b *base) WarmupPeriod() int { return b.def.warmup }

// NewStream returns an incremental evaluator over closed candles
func (b *base) NewStream(meta types.SnapshotMeta) *Stream {
	return newStream(b.def, meta)
}

func (b *base) Compute(snapshot *types.Snapshot) (*AnnotatedSeries, error) {
	for _, name := range b.def.required {
		if _, err := snapshot.Column(name); err != nil {
			return nil, fmt.Errorf("%s: %w", b.def.featureName, err)
		}
	}

	stream := newStream(b.def, snapshot.Meta())
	series := newAnnotatedSeries(snapshot, b.def.columns)
	for i := 0; i < snapshot.Len(); i++ {
		series.append(stream.push(snapshot.Candle(i)))
	}
	return series, nil
}

func (b *base) Evaluate(snapshot *types.Snapshot) (Evaluation, error) {
	series, err := b.Compute(snapshot)
	if err != nil {
		return Evaluation{}, err
	}
	return series.Evaluation(), nil
}

func (b *base) CreateFeature(snapshot *types.Snapshot) (*Feature, error) {
	series, err := b.Compute(snapshot)
	if err != nil {
		return nil, err
	}
	return b.FeatureFromSeries(series), nil
}

func (b *base) CreateSignal(snapshot *types.Snapshot, minIntensity float64) (*Signal, error) {
	series, err := b.Compute(snapshot)
	if err != nil {
		return nil, err
	}
	return b.SignalFromSeries(series, minIntensity), nil
}

// FeatureFromSeries builds the feature of the latest row of series
func (b *base) FeatureFromSeries(series *AnnotatedSeries) *Feature {
	row, ok := series.Latest()
	if !ok {
		row = b.def.emptyRow()
	}
	return b.def.feature(series.Snapshot().Meta(), row)
}

// SignalFromSeries builds the signal of the latest row of series, if any
func (b *base) SignalFromSeries(series *AnnotatedSeries, minIntensity float64) *Signal {
	row, ok := series.Latest()
	if !ok {
		return nil
	}
	return b.def.signal(series.Snapshot().Meta(), row, minIntensity)
}

func (d *definition) emptyRow() Row {
	row := Row{Index: -1, Close: math.NaN(), Values: make([]float64, len(d.columns))}
	for i := range row.Values {
		row.Values[i] = math.NaN()
	}
	return row
}

func (d *definition) feature(meta types.SnapshotMeta, row Row) *Feature {
	value := make(map[string]float64, len(d.columns)+3)
	for i, name := range d.columns {
		value[name] = row.Values[i]
	}
	value[ValueSignal] = float64(row.Direction)
	value[ValueIntensity] = row.Intensity
	value[ValuePrice] = row.Close

	info := make(map[string]interface{}, len(d.info)+2)
	for k, v := range d.info {
		info[k] = v
	}
	info["description"] = d.description
	info["interval"] = meta.Interval
	if meta.Interval == "" {
		info["interval"] = d.interval
	}

	return &Feature{
		FeatureName:   d.featureName,
		TradingPair:   meta.TradingPair,
		ConnectorName: meta.Connector,
		Timestamp:     row.Timestamp,
		Value:         value,
		Info:          info,
	}
}

func (d *definition) signal(meta types.SnapshotMeta, row Row, minIntensity float64) *Signal {
	if (row.Direction != Long && row.Direction != Short) || row.Intensity < minIntensity {
		return nil
	}
	return &Signal{
		SignalName:  d.signalName,
		TradingPair: meta.TradingPair,
		Category:    d.category,
		Value:       float64(row.Direction) * row.Intensity,
		Timestamp:   row.Timestamp,
	}
}

// Stream evaluates one closed candle at a time with constant work per bar.
// After n pushes its latest row equals the last row of Compute over the
// same n candles.
type Stream struct {
	def     *definition
	meta    types.SnapshotMeta
	stepper stepper
	count   int
	last    Row
}

func newStream(def *definition, meta types.SnapshotMeta) *Stream {
	return &Stream{def: def, meta: meta, stepper: def.newStepper()}
}

// Push evaluates the next candle. Candles must arrive in strictly
// ascending timestamp order.
func (s *Stream) Push(c types.OHLCV) (Row, error) {
	if s.count > 0 && !c.Timestamp.After(s.last.Timestamp) {
		return Row{}, sigerrors.NewDataError(s.def.featureName, "push",
			fmt.Sprintf("candle at %s is not after %s", c.Timestamp, s.last.Timestamp))
	}
	return s.push(c), nil
}

func (s *Stream) push(c types.OHLCV) Row {
	values := make([]float64, len(s.def.columns))
	direction, intensity := s.stepper.step(c, values)

	// Rows inside the warm-up window never carry a direction
	if s.count < s.def.warmup {
		direction = Neutral
	}
	if direction == Neutral {
		intensity = 0
	}

	row := Row{
		Index:     s.count,
		Timestamp: c.Timestamp,
		Close:     c.Close,
		Values:    values,
		Direction: direction,
		Intensity: intensity,
	}
	s.count++
	s.last = row
	return row
}

// Len returns the number of candles consumed
func (s *Stream) Len() int {
	return s.count
}

// Columns returns the derived column names of emitted rows
func (s *Stream) Columns() []string {
	return s.def.columns
}

// Last returns the most recent row
func (s *Stream) Last() (Row, bool) {
	return s.last, s.count > 0
}

// Feature returns the feature of the most recent row
func (s *Stream) Feature() *Feature {
	if s.count == 0 {
		return s.def.feature(s.meta, s.def.emptyRow())
	}
	return s.def.feature(s.meta, s.last)
}

// Signal returns the signal of the most recent row, if any
func (s *Stream) Signal(minIntensity float64) *Signal {
	if s.count == 0 {
		return nil
	}
	return s.def.signal(s.meta, s.last, minIntensity)
}
