package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

func allCalculators(t *testing.T) []Calculator {
	t.Helper()
	trendCfg := config.DefaultTrendCrossoverConfig()
	trendCfg.FastPeriod, trendCfg.SlowPeriod = 12, 26
	trendCfg.ADXThreshold = 10
	trendCfg.VolumeMultiplier = 0.5

	calcs := make([]Calculator, 0, 4)
	for _, cfg := range []config.IndicatorConfig{
		trendCfg,
		config.DefaultMomentumConfig(),
		config.DefaultOscillatorConfig(),
		config.DefaultBandConfig(),
	} {
		calc, err := New(cfg)
		require.NoError(t, err)
		calcs = append(calcs, calc)
	}
	return calcs
}

func TestCalculators_OutputInvariants(t *testing.T) {
	for _, calc := range allCalculators(t) {
		for seed := int64(1); seed <= 5; seed++ {
			series, err := calc.Compute(makeSnapshot(t, randomWalk(400, seed)))
			require.NoError(t, err)
			require.Equal(t, 400, series.Len())

			for i := 0; i < series.Len(); i++ {
				row := series.Row(i)
				assert.Contains(t, []Direction{Short, Neutral, Long}, row.Direction)
				assert.GreaterOrEqual(t, row.Intensity, 0.0, "%s row %d", calc.Name(), i)
				assert.LessOrEqual(t, row.Intensity, 1.0, "%s row %d", calc.Name(), i)
				if row.Direction == Neutral {
					assert.Equal(t, 0.0, row.Intensity)
				}
				if i < calc.WarmupPeriod() {
					assert.Equal(t, Neutral, row.Direction, "%s warm-up row %d", calc.Name(), i)
				}
			}
		}
	}
}

func TestCalculators_Idempotent(t *testing.T) {
	snapshot := makeSnapshot(t, randomWalk(300, 42))
	for _, calc := range allCalculators(t) {
		first, err := calc.Compute(snapshot)
		require.NoError(t, err)
		second, err := calc.Compute(snapshot)
		require.NoError(t, err)

		for _, name := range first.ColumnNames() {
			a, err := first.Column(name)
			require.NoError(t, err)
			b, err := second.Column(name)
			require.NoError(t, err)
			require.Len(t, b, len(a))
			for i := range a {
				assert.True(t, sameBits(a[i], b[i]), "%s column %s row %d", calc.Name(), name, i)
			}
		}
	}
}

func TestCalculators_DoNotMutateSnapshot(t *testing.T) {
	closes := randomWalk(120, 7)
	snapshot := makeSnapshot(t, closes)
	for _, calc := range allCalculators(t) {
		_, err := calc.Compute(snapshot)
		require.NoError(t, err)
	}

	got, err := snapshot.Column(types.ColumnClose)
	require.NoError(t, err)
	assert.Equal(t, closes, got)
	assert.Equal(t, []string{"open", "high", "low", "close", "volume"}, snapshot.ColumnNames())
}

func TestCalculators_SignalValueIsDirectionTimesIntensity(t *testing.T) {
	for _, calc := range allCalculators(t) {
		closes := randomWalk(400, 11)
		for n := 60; n <= len(closes); n += 7 {
			snapshot := makeSnapshot(t, closes[:n])
			eval, err := calc.Evaluate(snapshot)
			require.NoError(t, err)

			signal, err := calc.CreateSignal(snapshot, 0)
			require.NoError(t, err)
			if eval.Direction == Neutral {
				assert.Nil(t, signal)
				continue
			}
			require.NotNil(t, signal)
			assert.Equal(t, float64(eval.Direction)*eval.Intensity, signal.Value)
			assert.Equal(t, calc.SignalName(), signal.SignalName)
			assert.Equal(t, calc.Category(), signal.Category)

			above, err := calc.CreateSignal(snapshot, eval.Intensity+1e-9)
			require.NoError(t, err)
			assert.Nil(t, above, "below the gate no signal is emitted")
		}
	}
}

func TestStream_MatchesCompute(t *testing.T) {
	closes := randomWalk(250, 3)
	candles := generateCandles(closes, nil)
	snapshot := makeSnapshot(t, closes)

	for _, calc := range allCalculators(t) {
		series, err := calc.Compute(snapshot)
		require.NoError(t, err)

		stream := calc.NewStream(testMeta)
		for i, c := range candles {
			row, err := stream.Push(c)
			require.NoError(t, err)

			expected := series.Row(i)
			assert.Equal(t, expected.Index, row.Index)
			assert.Equal(t, expected.Direction, row.Direction)
			assert.True(t, sameBits(expected.Intensity, row.Intensity))
			for j := range expected.Values {
				assert.True(t, sameBits(expected.Values[j], row.Values[j]), "%s row %d col %d", calc.Name(), i, j)
			}
		}
		assert.Equal(t, len(candles), stream.Len())

		fromStream := stream.Feature()
		fromSeries := calc.FeatureFromSeries(series)
		assert.Equal(t, fromSeries.Timestamp, fromStream.Timestamp)
		assert.Equal(t, fromSeries.Value[ValueSignal], fromStream.Value[ValueSignal])
	}
}

func TestStream_RejectsOutOfOrderCandles(t *testing.T) {
	calc, err := NewDefault(config.KindRSI)
	require.NoError(t, err)

	stream := calc.NewStream(testMeta)
	candles := generateCandles([]float64{1, 2}, nil)
	_, err = stream.Push(candles[1])
	require.NoError(t, err)
	_, err = stream.Push(candles[0])
	assert.Error(t, err)
	_, err = stream.Push(candles[1])
	assert.Error(t, err, "duplicate timestamp")

	assert.Nil(t, calc.NewStream(testMeta).Signal(0))
}

func TestCalculators_EmptySnapshot(t *testing.T) {
	snapshot := makeSnapshot(t, nil)
	for _, calc := range allCalculators(t) {
		eval, err := calc.Evaluate(snapshot)
		require.NoError(t, err)
		assert.Equal(t, Evaluation{}, eval)

		feature, err := calc.CreateFeature(snapshot)
		require.NoError(t, err)
		assert.Equal(t, 0.0, feature.Value[ValueSignal])

		signal, err := calc.CreateSignal(snapshot, 0)
		require.NoError(t, err)
		assert.Nil(t, signal)
	}
}

func TestAnnotatedSeries_Columns(t *testing.T) {
	calc, err := NewDefault(config.KindRSI)
	require.NoError(t, err)
	series, err := calc.Compute(makeSnapshot(t, randomWalk(50, 1)))
	require.NoError(t, err)

	assert.Equal(t, []string{"open", "high", "low", "close", "volume", "rsi", "signal", "signal_intensity"}, series.ColumnNames())

	closes, err := series.Column(types.ColumnClose)
	require.NoError(t, err)
	assert.Len(t, closes, 50)

	signals, err := series.Column(ColumnSignal)
	require.NoError(t, err)
	for i, d := range series.Directions() {
		assert.Equal(t, float64(d), signals[i])
	}

	_, err = series.Column("ema_fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing derived column "ema_fast"`)
}
