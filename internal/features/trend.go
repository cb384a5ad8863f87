package features

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/directional-signals/internal/indicators"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// Trend crossover derived columns
const (
	ColumnEMAFast   = "ema_fast"
	ColumnEMASlow   = "ema_slow"
	ColumnAvgVolume = "avg_volume"
	ColumnADX       = "adx"
	ColumnPlusDI    = "plus_di"
	ColumnMinusDI   = "minus_di"
)

// TrendCrossover goes long when the fast EMA crosses above the slow EMA on
// above-average volume in a strong trend, and short on the mirror cross.
// Intensity is the ADX reading scaled to [0, 1].
type TrendCrossover struct {
	*base
	cfg config.TrendCrossoverConfig
}

// NewTrendCrossover validates cfg and creates the calculator
func NewTrendCrossover(cfg config.TrendCrossoverConfig) (*TrendCrossover, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &TrendCrossover{cfg: cfg}
	t.base = &base{def: &definition{
		kind:        config.KindEMACrossover,
		featureName: string(config.KindEMACrossover),
		signalName:  fmt.Sprintf("ema_crossover_%d_%d", cfg.FastPeriod, cfg.SlowPeriod),
		category:    "trend",
		description: "EMA crossover feature",
		interval:    cfg.Interval,
		columns:     []string{ColumnEMAFast, ColumnEMASlow, ColumnAvgVolume, ColumnADX, ColumnPlusDI, ColumnMinusDI},
		required:    []string{types.ColumnClose, types.ColumnVolume, types.ColumnHigh, types.ColumnLow},
		warmup:      maxInt(cfg.FastPeriod, cfg.SlowPeriod, cfg.VolumePeriod, cfg.ADXPeriod),
		info: map[string]interface{}{
			"fast_period":       cfg.FastPeriod,
			"slow_period":       cfg.SlowPeriod,
			"volume_period":     cfg.VolumePeriod,
			"volume_multiplier": cfg.VolumeMultiplier,
			"adx_period":        cfg.ADXPeriod,
			"adx_threshold":     cfg.ADXThreshold,
		},
		newStepper: func() stepper { return newTrendStepper(cfg) },
	}}
	return t, nil
}

// Config returns the calculator configuration
func (t *TrendCrossover) Config() config.TrendCrossoverConfig {
	return t.cfg
}

type trendStepper struct {
	cfg      config.TrendCrossoverConfig
	fast     *indicators.EMA
	slow     *indicators.EMA
	volume   *indicators.RollingWindow
	adx      *indicators.ADX
	prevFast float64
	prevSlow float64
}

func newTrendStepper(cfg config.TrendCrossoverConfig) *trendStepper {
	return &trendStepper{
		cfg:      cfg,
		fast:     indicators.NewEMA(cfg.FastPeriod),
		slow:     indicators.NewEMA(cfg.SlowPeriod),
		volume:   indicators.NewRollingWindow(cfg.VolumePeriod),
		adx:      indicators.NewADX(cfg.ADXPeriod),
		prevFast: math.NaN(),
		prevSlow: math.NaN(),
	}
}

func (s *trendStepper) step(c types.OHLCV, out []float64) (Direction, float64) {
	fast := s.fast.Update(c.Close)
	slow := s.slow.Update(c.Close)
	s.volume.Push(c.Volume)
	avgVolume := s.volume.Mean()
	adx := s.adx.Update(c.High, c.Low, c.Close)

	out[0], out[1], out[2] = fast, slow, avgVolume
	out[3], out[4], out[5] = adx.ADX, adx.PlusDI, adx.MinusDI

	prevFast, prevSlow := s.prevFast, s.prevSlow
	s.prevFast, s.prevSlow = fast, slow

	if !indicators.Greater(c.Volume, avgVolume*s.cfg.VolumeMultiplier) ||
		!indicators.Greater(adx.ADX, s.cfg.ADXThreshold) {
		return Neutral, 0
	}

	switch {
	case indicators.CrossedAbove(fast, slow, prevFast, prevSlow):
		return Long, s.adx.GetSignalStrength()
	case indicators.CrossedBelow(fast, slow, prevFast, prevSlow):
		return Short, s.adx.GetSignalStrength()
	default:
		return Neutral, 0
	}
}

func maxInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
