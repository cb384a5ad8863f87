package features

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/directional-signals/pkg/types"
)

var testMeta = types.SnapshotMeta{Connector: "bybit", TradingPair: "BTCUSDT", Interval: "1m"}

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// generateCandles builds one-minute candles from closes with high/low one
// unit around the close.
func generateCandles(closes, volumes []float64) []types.OHLCV {
	candles := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		volume := 1000.0
		if volumes != nil {
			volume = volumes[i]
		}
		candles[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Minute),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    volume,
		}
	}
	return candles
}

func makeSnapshot(t testing.TB, closes []float64) *types.Snapshot {
	t.Helper()
	snapshot, err := types.NewSnapshotFromCandles(testMeta, generateCandles(closes, nil), types.DefaultMaxRecords)
	require.NoError(t, err)
	return snapshot
}

// vShape falls from 130 to 100 over 30 bars and then rises to 160
func vShape() []float64 {
	closes := make([]float64, 0, 60)
	for i := 0; i < 30; i++ {
		closes = append(closes, 130-30*float64(i)/29)
	}
	for i := 0; i < 30; i++ {
		closes = append(closes, 100+60*float64(i+1)/30)
	}
	return closes
}

func linearRamp(n int, from, to float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = from + (to-from)*float64(i)/float64(n-1)
	}
	return closes
}

func flat(n int, v float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

func randomWalk(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1 + (rng.Float64()-0.5)*0.04
		closes[i] = price
	}
	return closes
}

// nonZero returns the index and direction of every signalling row
func nonZero(series *AnnotatedSeries) map[int]Direction {
	out := make(map[int]Direction)
	for i, d := range series.Directions() {
		if d != Neutral {
			out[i] = d
		}
	}
	return out
}

func sameBits(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}
