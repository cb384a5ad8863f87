package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/directional-signals/internal/features"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// zigzag returns flat closes with a spike above the band at each index in spikes
func zigzag(n int, spikes ...int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
	}
	for _, i := range spikes {
		closes[i] = 110
	}
	return closes
}

func snapshotOf(t *testing.T, closes []float64) *types.Snapshot {
	t.Helper()
	candles := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		candles[i] = types.OHLCV{
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
			Timestamp: testStart.Add(time.Duration(i) * time.Minute),
		}
	}
	meta := types.SnapshotMeta{Connector: "bybit", TradingPair: "BTCUSDT", Interval: "1m"}
	snapshot, err := types.NewSnapshotFromCandles(meta, candles, 0)
	require.NoError(t, err)
	return snapshot
}

func writeCSV(t *testing.T, dir string, closes []float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,open,high,low,close,volume\n")
	for i, c := range closes {
		ts := testStart.Add(time.Duration(i) * time.Minute).Format("2006-01-02 15:04:05")
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,1000\n", ts, c, c+1, c-1, c)
	}
	path := filepath.Join(dir, "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestReplay_MatchesCompute(t *testing.T) {
	calc, err := features.NewDefault(config.KindBollinger)
	require.NoError(t, err)
	snapshot := snapshotOf(t, zigzag(21, 20))

	result, err := Replay(calc, snapshot, 0.6)
	require.NoError(t, err)

	require.Len(t, result.Signals, 1)
	assert.Equal(t, testStart.Add(20*time.Minute), result.Signals[0].Timestamp)
	assert.Equal(t, -1.0, result.Signals[0].Value)

	expected := calc.FeatureFromSeries(result.Series)
	assert.Equal(t, expected.Timestamp, result.Feature.Timestamp)
	assert.Equal(t, expected.Value[features.ValueSignal], result.Feature.Value[features.ValueSignal])
	assert.Equal(t, 21, result.Series.Len())
}

func TestReplay_MinIntensityGate(t *testing.T) {
	calc, err := features.NewDefault(config.KindBollinger)
	require.NoError(t, err)

	result, err := Replay(calc, snapshotOf(t, zigzag(21, 20)), 1.01)
	require.NoError(t, err)
	assert.Empty(t, result.Signals)
}

func TestControllerFromFlags(t *testing.T) {
	cfg, err := controllerFromFlags("bb", "bybit", "ETHUSDT", "5m", "{length: 30, mult: 2.5}", 500, 0.7)
	require.NoError(t, err)
	assert.Equal(t, config.KindBollinger, cfg.Kind())
	assert.Equal(t, "5m", cfg.Interval())
	assert.Equal(t, "bollinger_ETHUSDT_5m", cfg.ID)
	band, ok := cfg.Indicator.(*config.BandConfig)
	require.True(t, ok)
	assert.Equal(t, 30, band.Length)
	assert.Equal(t, 2.5, band.Mult)

	cfg, err = controllerFromFlags("rsi", "bybit", "BTCUSDT", "", "", 1000, 0.6)
	require.NoError(t, err)
	assert.Equal(t, "1m", cfg.Interval())

	_, err = controllerFromFlags("rsi", "bybit", "BTCUSDT", "", "{oversold: 80}", 1000, 0.6)
	assert.Error(t, err, "oversold must stay below overbought")

	_, err = controllerFromFlags("rsi", "bybit", "BTCUSDT", "", "[not, a, map]", 1000, 0.6)
	assert.Error(t, err)
}

func TestControllerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controllers.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
controllers:
  - controller_name: rsi
    trading_pair: BTCUSDT
  - controller_name: bollinger
    trading_pair: BTCUSDT
`), 0o644))

	cfg, err := controllerFromFile(path, "bollinger_BTCUSDT_1m")
	require.NoError(t, err)
	assert.Equal(t, config.KindBollinger, cfg.Kind())

	_, err = controllerFromFile(path, "")
	assert.ErrorContains(t, err, "choose one with -id")

	_, err = controllerFromFile(path, "macd")
	assert.ErrorContains(t, err, "rsi_BTCUSDT_1m")
}

func TestRun_Exports(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, zigzag(30, 20))
	jsonPath := filepath.Join(dir, "out", "report.json")
	seriesPath := filepath.Join(dir, "out", "series.csv")
	xlsxPath := filepath.Join(dir, "out", "series.xlsx")

	require.NoError(t, run([]string{
		"-kind", "bollinger",
		"-data", csvPath,
		"-json", jsonPath,
		"-csv", seriesPath,
		"-xlsx", xlsxPath,
		"-signals",
	}))

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var report struct {
		Signals []features.Signal `json:"signals"`
	}
	require.NoError(t, json.Unmarshal(raw, &report))
	require.Len(t, report.Signals, 1)
	assert.Equal(t, "bollinger_20_2.0", report.Signals[0].SignalName)

	assert.FileExists(t, seriesPath)
	assert.FileExists(t, xlsxPath)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, zigzag(30))

	assert.Error(t, run([]string{"-min-intensity", "2"}))
	assert.Error(t, run([]string{"-data", csvPath, "-period", "1d", "-start", "2024-01-01"}))
	assert.Error(t, run([]string{"-data-root", dir, "-pair", "SOLUSDT"}))
	assert.Error(t, run([]string{"-data", csvPath, "-end", "2023-01-01"}), "nothing left to replay")
	assert.NoError(t, run([]string{"-data", csvPath, "-period", "10m"}))
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join("results", "BTCUSDT_5m")
	assert.Equal(t, filepath.Join(dir, "out.xlsx"), outputPath(dir, "out.xlsx"))
	assert.Equal(t, filepath.Join("exports", "out.csv"), outputPath(dir, filepath.Join("exports", "out.csv")))
	assert.Empty(t, outputPath(dir, ""))
}

func TestRun_SessionLog(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, zigzag(30, 20))
	logDir := filepath.Join(dir, "logs")

	require.NoError(t, run([]string{"-data", csvPath, "-log-dir", logDir, "-verbose"}))

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "BTCUSDT_1m_"))
}
