package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/directional-signals/internal/features"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// breakoutSeries is a flat band followed by one close far above it
func breakoutSeries(t *testing.T) (features.Calculator, *features.AnnotatedSeries) {
	t.Helper()
	candles := make([]types.OHLCV, 0, 21)
	for i := 0; i < 21; i++ {
		c := 100.0
		if i == 20 {
			c = 110
		}
		candles = append(candles, types.OHLCV{
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
			Timestamp: testStart.Add(time.Duration(i) * time.Minute),
		})
	}
	meta := types.SnapshotMeta{Connector: "bybit", TradingPair: "BTCUSDT", Interval: "1m"}
	snapshot, err := types.NewSnapshotFromCandles(meta, candles, 0)
	require.NoError(t, err)

	calc, err := features.NewDefault(config.KindBollinger)
	require.NoError(t, err)
	series, err := calc.Compute(snapshot)
	require.NoError(t, err)
	return calc, series
}

func shortSignal() features.Signal {
	return features.Signal{
		SignalName:  "bollinger_20_2.0",
		TradingPair: "BTCUSDT",
		Category:    "bb",
		Value:       -1,
		Timestamp:   testStart.Add(20 * time.Minute),
	}
}

func TestSummarize(t *testing.T) {
	calc, series := breakoutSeries(t)
	s := Summarize(calc, series, []features.Signal{shortSignal()})

	assert.Equal(t, "bollinger", s.Feature)
	assert.Equal(t, "bollinger_20_2.0", s.SignalName)
	assert.Equal(t, 21, s.Bars)
	assert.Equal(t, 1, s.Short)
	assert.Equal(t, 0, s.Long)
	assert.Equal(t, 20, s.Neutral)
	assert.Equal(t, 1, s.ShortSignals)
	assert.Equal(t, 1.0, s.MaxIntensity)
	assert.Equal(t, 1.0, s.AvgIntensity)
	assert.Equal(t, testStart, s.First)
	assert.Equal(t, features.Short, s.Final.Direction)
}

func TestConsoleReporter(t *testing.T) {
	calc, series := breakoutSeries(t)
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.PrintFeature(calc.FeatureFromSeries(series))
	r.PrintSignals([]features.Signal{shortSignal()})
	r.PrintSignals(nil)
	r.PrintPrompts(config.KindBollinger)
	r.PrintReplaySummary(Summarize(calc, series, nil))

	out := buf.String()
	assert.Contains(t, out, "BOLLINGER BTCUSDT")
	assert.Contains(t, out, "band_pos")
	assert.Contains(t, out, "SHORT")
	assert.Contains(t, out, "no signals")
	assert.Contains(t, out, "mult")
	assert.Contains(t, out, "REPLAY SUMMARY")
}

func TestConsoleReporter_Controllers(t *testing.T) {
	f, err := config.Parse([]byte(`
controllers:
  - controller_name: rsi
    trading_pair: ETHUSDT
`))
	require.NoError(t, err)

	var buf bytes.Buffer
	NewConsoleReporter(&buf).PrintControllers(f.Controllers)
	assert.Contains(t, buf.String(), "rsi_ETHUSDT_1m")
	assert.Contains(t, buf.String(), "bybit ETHUSDT")
}

func TestWriteSeriesCSV(t *testing.T) {
	_, series := breakoutSeries(t)
	path := filepath.Join(t.TempDir(), "out", "series.csv")
	require.NoError(t, WriteSeriesCSV(series, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 22)
	header := records[0]
	assert.Equal(t, "timestamp", header[0])
	assert.Contains(t, header, "band_pos")
	assert.Equal(t, "signal_intensity", header[len(header)-1])

	bandPos := indexOf(header, "band_pos")
	assert.Equal(t, "", records[1][bandPos], "warm-up rows are blank")
	assert.Equal(t, "-1", records[21][indexOf(header, "signal")])
}

func TestWriteSeriesXLSX(t *testing.T) {
	_, series := breakoutSeries(t)
	path := filepath.Join(t.TempDir(), "series.xlsx")
	require.NoError(t, WriteSeriesXLSX(series, []features.Signal{shortSignal()}, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.Equal(t, []string{seriesSheet, signalsSheet}, fx.GetSheetList())
	rows, err := fx.GetRows(seriesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 22)

	name, err := fx.GetCellValue(signalsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "bollinger_20_2.0", name)
	side, err := fx.GetCellValue(signalsSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "short", side)
}

func TestEncodeReportJSON(t *testing.T) {
	calc, series := breakoutSeries(t)
	feature := calc.FeatureFromSeries(series)
	feature.Value["bb_width"] = math.NaN()

	var buf bytes.Buffer
	require.NoError(t, EncodeReportJSON(&buf, FeatureReport{Feature: feature}))

	var decoded struct {
		Feature struct {
			FeatureName string              `json:"feature_name"`
			Value       map[string]*float64 `json:"value"`
		} `json:"feature"`
		Signals []features.Signal `json:"signals"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "bollinger", decoded.Feature.FeatureName)
	assert.Nil(t, decoded.Feature.Value["bb_width"])
	assert.NotNil(t, decoded.Signals)
	assert.Empty(t, decoded.Signals)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("results", "BTCUSDT_5m"), DefaultOutputDir("btc-usdt", "5m"))
	assert.Equal(t, filepath.Join("results", "UNKNOWN_unknown"), DefaultOutputDir("", ""))

	assert.Equal(t, "5m", ExtractIntervalFromPath("data/bybit/linear/BTCUSDT/5m/candles.csv"))
	assert.Equal(t, "1h", ExtractIntervalFromPath("data/bybit/linear/BTCUSDT/60/candles.csv"))
	assert.Equal(t, "1d", ExtractIntervalFromPath("data/bybit/spot/ETHUSDT/1440/candles.csv"))
	assert.Equal(t, "", ExtractIntervalFromPath("candles.csv"))
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
