package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/reporting"
)

// writeCandles stores 20 flat closes and a breakout bar as
// {root}/csv/spot/BTCUSDT/1/candles.csv
func writeCandles(t *testing.T, root string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,open,high,low,close,volume\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		c := 100.0
		if i == 20 {
			c = 110
		}
		fmt.Fprintf(&b, "%d,%g,%g,%g,%g,1000\n", start.Add(time.Duration(i)*time.Minute).Unix(), c, c+1, c-1, c)
	}
	dir := filepath.Join(root, "csv", "spot", "BTCUSDT", "1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "candles.csv"), []byte(b.String()), 0o644))
}

const localControllers = `
controllers:
  - controller_name: bollinger
    connector_name: bybit
    trading_pair: BTCUSDT
    candles_connector: csv
`

func TestSignalBot_RunOnce(t *testing.T) {
	root := t.TempDir()
	writeCandles(t, root)

	file, err := config.Parse([]byte(localControllers))
	require.NoError(t, err)

	bot, err := NewSignalBot(&config.AppConfig{}, file, Options{
		DataRoot:      root,
		DataConnector: "csv",
		NoBybit:       true,
		StaleAfter:    time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, bot.server, "no metrics address configured")
	assert.Equal(t, []string{"csv"}, bot.sources.Connectors())
	assert.Equal(t, 1, bot.publisher.Len())

	var buf bytes.Buffer
	console := reporting.NewConsoleReporter(&buf)
	require.NoError(t, bot.RunOnce(context.Background(), console))
	assert.Contains(t, buf.String(), "BOLLINGER BTCUSDT")

	signals := bot.memory.Signals("BTCUSDT", "bollinger_20_2.0", 0)
	require.Len(t, signals, 1)
	assert.Equal(t, -1.0, signals[0].Value)

	feature, ok := bot.memory.LatestFeature("bybit", "BTCUSDT", "bollinger")
	require.True(t, ok)
	assert.Equal(t, 110.0, feature.Value["price"])

	buf.Reset()
	bot.PrintSessionSignals(console)
	assert.Contains(t, buf.String(), "bollinger_20_2.0")

	assert.Equal(t, "healthy", bot.health.Status().Status)
	require.NoError(t, bot.Shutdown(context.Background()))
}

func TestSignalBot_MissingSource(t *testing.T) {
	file, err := config.Parse([]byte(localControllers))
	require.NoError(t, err)

	bot, err := NewSignalBot(&config.AppConfig{MetricsAddr: "127.0.0.1:0"}, file, Options{NoBybit: true}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, bot.server)

	err = bot.RunOnce(context.Background(), reporting.NewConsoleReporter(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candle source")
}

func TestRun_Flags(t *testing.T) {
	assert.NoError(t, run([]string{"-version"}))
	assert.NoError(t, run([]string{"-prompts", "rsi"}))
	assert.Error(t, run([]string{"-prompts", "stochastic"}))

	err := run([]string{"-config", filepath.Join(t.TempDir(), "missing.yml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	err = run([]string{"-no-bybit", "-config", writeConfig(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-no-bybit needs -data-root")
}

func TestRun_Once(t *testing.T) {
	root := t.TempDir()
	writeCandles(t, root)
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("LOG_OUTPUT", "stderr")

	err := run([]string{
		"-once", "-no-bybit",
		"-env", filepath.Join(root, "missing.env"),
		"-data-root", root,
		"-config", writeConfig(t),
	})
	assert.NoError(t, err)
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "controllers.yml")
	require.NoError(t, os.WriteFile(path, []byte(localControllers), 0o644))
	return path
}
