package indicators

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func assertSeries(t *testing.T, expected, actual []float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.Truef(t, math.IsNaN(actual[i]), "index %d: expected NaN, got %v", i, actual[i])
			continue
		}
		assert.InDeltaf(t, expected[i], actual[i], tolerance, "index %d", i)
	}
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func emaSeries(values []float64, period int) []float64 {
	ema := NewEMA(period)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = ema.Update(v)
	}
	return out
}

func smaSeries(values []float64, period int) []float64 {
	window := NewRollingWindow(period)
	out := make([]float64, len(values))
	for i, v := range values {
		window.Push(v)
		out[i] = window.Mean()
	}
	return out
}

func rsiSeries(closes []float64, length int) []float64 {
	rsi := NewRSI(length)
	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = rsi.Update(c)
	}
	return out
}

func TestEMA_SeedAndRecurrence(t *testing.T) {
	nan := math.NaN()
	assertSeries(t, []float64{nan, nan, 2, 3, 4}, emaSeries([]float64{1, 2, 3, 4, 5}, 3))
}

func TestEMA_SkipsNaNPrefix(t *testing.T) {
	nan := math.NaN()
	got := emaSeries([]float64{nan, nan, 1, 2, 3}, 2)
	assertSeries(t, []float64{nan, nan, nan, 1.5, 2.5}, got)
}

func TestEMA_Ready(t *testing.T) {
	ema := NewEMA(2)
	ema.Update(1)
	assert.False(t, ema.IsReady())
	assert.True(t, math.IsNaN(ema.Value()))
	ema.Update(3)
	require.True(t, ema.IsReady())
	assert.Equal(t, 2.0, ema.Value())
}

func TestRollingWindow_MeanAndStdDev(t *testing.T) {
	window := NewRollingWindow(8)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7} {
		window.Push(v)
		assert.False(t, window.IsReady())
		assert.True(t, math.IsNaN(window.Mean()))
		assert.True(t, math.IsNaN(window.StdDev()))
	}
	window.Push(9)

	require.True(t, window.IsReady())
	assert.InDelta(t, 5.0, window.Mean(), tolerance)
	assert.InDelta(t, 2.0, window.StdDev(), tolerance)
}

func TestRollingWindow_MatchesNaiveOverLongRun(t *testing.T) {
	period := 20
	values := make([]float64, 1000)
	for i := range values {
		values[i] = 100 + 10*math.Sin(float64(i)/7) + float64(i%13)
	}

	window := NewRollingWindow(period)
	for i, v := range values {
		window.Push(v)
		if i < period-1 {
			continue
		}
		sum := 0.0
		for _, x := range values[i-period+1 : i+1] {
			sum += x
		}
		mean := sum / float64(period)
		sq := 0.0
		for _, x := range values[i-period+1 : i+1] {
			sq += (x - mean) * (x - mean)
		}
		assert.InDelta(t, mean, window.Mean(), 1e-9)
		assert.InDelta(t, math.Sqrt(sq/float64(period)), window.StdDev(), 1e-6)
	}
}

func TestRollingWindow_ConstantHasZeroStdDev(t *testing.T) {
	window := NewRollingWindow(20)
	for i := 0; i < 50; i++ {
		window.Push(100)
	}
	assert.Equal(t, 100.0, window.Mean())
	assert.Equal(t, 0.0, window.StdDev())
}

// randomWalk is a reproducible noisy price path around start
func randomWalk(n int, start float64) []float64 {
	rng := rand.New(rand.NewSource(7))
	out := make([]float64, n)
	v := start
	for i := range out {
		v += rng.NormFloat64() * start * 0.001
		out[i] = v
	}
	return out
}

func TestRollingWindow_FlatAfterNoise(t *testing.T) {
	for _, v := range []float64{100.1, 0.3, 1234.56789, 60000.7} {
		window := NewRollingWindow(20)
		for _, x := range randomWalk(200, v) {
			window.Push(x)
		}
		for i := 0; i < 40; i++ {
			window.Push(v)
			if i < 19 {
				assert.Greater(t, window.StdDev(), 0.0, "value %v bar %d", v, i)
				continue
			}
			assert.Equal(t, v, window.Mean(), "value %v bar %d", v, i)
			assert.Equal(t, 0.0, window.StdDev(), "value %v bar %d", v, i)
		}
	}
}

func TestRollingWindow_SmallSpreadAtHighPrice(t *testing.T) {
	// One tick apart out of twenty at 60000 is a real, if tiny, deviation
	window := NewRollingWindow(20)
	for i := 0; i < 19; i++ {
		window.Push(60000.7)
	}
	window.Push(60000.8)
	assert.InDelta(t, 0.1*math.Sqrt(0.05*0.95), window.StdDev(), 1e-6)
}

func TestSMASeries(t *testing.T) {
	nan := math.NaN()
	assertSeries(t, []float64{nan, nan, 2, 3, 4, 5}, smaSeries([]float64{1, 2, 3, 4, 5, 6}, 3))
}

func TestWilder_SeededWithFirstValue(t *testing.T) {
	w := NewWilder(2)
	assert.Equal(t, 4.0, w.Update(4))
	assert.Equal(t, 2.0, w.Update(0))
	assert.Equal(t, 2.0, w.Update(2))
	assert.Equal(t, 2.0, w.Value())
}

func TestSMMA(t *testing.T) {
	s := NewSMMA(3)
	assert.True(t, math.IsNaN(s.Update(3)))
	assert.True(t, math.IsNaN(s.Update(6)))
	assert.False(t, s.IsReady())
	assert.Equal(t, 6.0, s.Update(9))
	assert.Equal(t, 8.0, s.Update(12))
	assert.Equal(t, 8.0, s.Update(math.NaN()))
	assert.True(t, s.IsReady())
}

func TestRSI_WarmupAndHandVector(t *testing.T) {
	got := rsiSeries([]float64{1, 2, 1}, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 50.0, got[2], 1e-9)
}

func TestRSI_Monotonic(t *testing.T) {
	t.Run("rising closes approach 100", func(t *testing.T) {
		got := rsiSeries(linear(30, 100, 1), 14)
		for i := 0; i < 14; i++ {
			assert.True(t, math.IsNaN(got[i]), "index %d", i)
		}
		for i := 14; i < 30; i++ {
			assert.InDelta(t, 100.0, got[i], 1e-6)
		}
	})

	t.Run("falling closes reach 0", func(t *testing.T) {
		got := rsiSeries(linear(30, 100, -1), 14)
		for i := 14; i < 30; i++ {
			assert.Equal(t, 0.0, got[i])
		}
	})
}

func TestADX_FlatBarsAreZero(t *testing.T) {
	adx := NewADX(14)
	var v ADXValue
	for i := 0; i < 40; i++ {
		v = adx.Update(100, 100, 100)
		if i < 27 {
			assert.True(t, math.IsNaN(v.ADX), "index %d", i)
		} else {
			assert.Equal(t, 0.0, v.ADX, "index %d", i)
		}
	}
	assert.Equal(t, 0.0, v.PlusDI)
	assert.Equal(t, 0.0, v.MinusDI)
	assert.Equal(t, 0.0, adx.GetSignalStrength())
}

func TestADX_StrongUptrend(t *testing.T) {
	adx := NewADX(14)
	for i := 0; i < 60; i++ {
		c := 100 + float64(i)
		adx.Update(c+1, c-1, c)
	}
	v := adx.Value()
	assert.InDelta(t, 100.0, v.ADX, tolerance)
	assert.InDelta(t, 50.0, v.PlusDI, tolerance)
	assert.Equal(t, 0.0, v.MinusDI)
	assert.Equal(t, 1.0, adx.GetSignalStrength())
}

func TestADXStrength(t *testing.T) {
	assert.Equal(t, 0.0, ADXStrength(math.NaN()))
	assert.Equal(t, 0.5, ADXStrength(20))
	assert.Equal(t, 1.0, ADXStrength(80))
}

func TestMACD_ConstantSeries(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	for i := 0; i < 40; i++ {
		v := macd.Update(100)
		switch {
		case i < 25:
			assert.True(t, math.IsNaN(v.MACD), "index %d", i)
		case i < 33:
			assert.InDelta(t, 0.0, v.MACD, tolerance)
			assert.True(t, math.IsNaN(v.Signal), "index %d", i)
			assert.True(t, math.IsNaN(v.Histogram), "index %d", i)
		default:
			assert.InDelta(t, 0.0, v.Signal, tolerance)
			assert.InDelta(t, 0.0, v.Histogram, tolerance)
		}
	}
}

func TestBollingerBands(t *testing.T) {
	t.Run("textbook values", func(t *testing.T) {
		bands := NewBollingerBands(8, 2)
		var v BollingerValue
		for _, c := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
			v = bands.Update(c)
		}
		assert.InDelta(t, 5.0, v.Middle, tolerance)
		assert.InDelta(t, 2.0, v.StdDev, tolerance)
		assert.InDelta(t, 9.0, v.Upper, tolerance)
		assert.InDelta(t, 1.0, v.Lower, tolerance)
	})

	t.Run("flat closes collapse the band", func(t *testing.T) {
		bands := NewBollingerBands(20, 2)
		for i := 0; i < 30; i++ {
			bands.Update(100)
		}
		v := bands.Value()
		assert.Equal(t, v.Upper, v.Lower)
		assert.Equal(t, 100.0, v.Middle)
	})

	t.Run("warm-up is NaN", func(t *testing.T) {
		bands := NewBollingerBands(20, 2)
		v := bands.Update(100)
		assert.True(t, math.IsNaN(v.Middle))
		assert.True(t, math.IsNaN(v.Upper))
	})
}

func TestComparisons_NaNNeverSatisfies(t *testing.T) {
	nan := math.NaN()
	for _, pair := range [][2]float64{{nan, 1}, {1, nan}, {nan, nan}} {
		assert.False(t, Greater(pair[0], pair[1]))
		assert.False(t, GreaterOrEqual(pair[0], pair[1]))
		assert.False(t, Less(pair[0], pair[1]))
		assert.False(t, LessOrEqual(pair[0], pair[1]))
	}

	assert.True(t, CrossedAbove(2, 1, 1, 1))
	assert.False(t, CrossedAbove(2, 1, 2, 1))
	assert.True(t, CrossedBelow(1, 2, 2, 2))
	assert.False(t, CrossedBelow(1, 2, nan, 2))
}

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, Clip(-1, 0, 1))
	assert.Equal(t, 1.0, Clip(2, 0, 1))
	assert.Equal(t, 0.25, Clip(0.25, 0, 1))
	assert.Equal(t, 0.0, Clip(math.NaN(), 0, 1))
}

func BenchmarkRollingWindow_Push(b *testing.B) {
	window := NewRollingWindow(20)
	for i := 0; i < b.N; i++ {
		window.Push(float64(i % 100))
		_ = window.StdDev()
	}
}

func BenchmarkRSI_Update(b *testing.B) {
	rsi := NewRSI(14)
	for i := 0; i < b.N; i++ {
		rsi.Update(100 + float64(i%17))
	}
}
