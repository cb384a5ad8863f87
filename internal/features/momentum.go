package features

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/directional-signals/internal/indicators"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// Momentum derived columns
const (
	ColumnMACD       = "macd"
	ColumnMACDSignal = "macd_signal"
	ColumnMACDHist   = "macd_hist"
	ColumnRSI        = "rsi"
)

// Momentum enters on a MACD signal-line cross with an expanding histogram
// confirmed by RSI on the same side of 50. A MACD zero-line cross forces
// the bar flat even when an entry fired on it.
type Momentum struct {
	*base
	cfg config.MomentumConfig
}

// NewMomentum validates cfg and creates the calculator
func NewMomentum(cfg config.MomentumConfig) (*Momentum, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Momentum{cfg: cfg}
	m.base = &base{def: &definition{
		kind:        config.KindMACDMomentum,
		featureName: string(config.KindMACDMomentum),
		signalName:  fmt.Sprintf("macd_momentum_%d_%d_%d", cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		category:    "momentum",
		description: "MACD momentum feature",
		interval:    cfg.Interval,
		columns:     []string{ColumnMACD, ColumnMACDSignal, ColumnMACDHist, ColumnRSI},
		required:    []string{types.ColumnClose},
		warmup:      maxInt(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal, cfg.RSIPeriod),
		info: map[string]interface{}{
			"macd_fast":   cfg.MACDFast,
			"macd_slow":   cfg.MACDSlow,
			"macd_signal": cfg.MACDSignal,
			"rsi_period":  cfg.RSIPeriod,
		},
		newStepper: func() stepper { return newMomentumStepper(cfg) },
	}}
	return m, nil
}

// Config returns the calculator configuration
func (m *Momentum) Config() config.MomentumConfig {
	return m.cfg
}

type momentumStepper struct {
	macd *indicators.MACD
	rsi  *indicators.RSI
	prev indicators.MACDValue
}

func newMomentumStepper(cfg config.MomentumConfig) *momentumStepper {
	nan := math.NaN()
	return &momentumStepper{
		macd: indicators.NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		rsi:  indicators.NewRSI(cfg.RSIPeriod),
		prev: indicators.MACDValue{MACD: nan, Signal: nan, Histogram: nan},
	}
}

func (s *momentumStepper) step(c types.OHLCV, out []float64) (Direction, float64) {
	cur := s.macd.Update(c.Close)
	rsi := s.rsi.Update(c.Close)
	out[0], out[1], out[2], out[3] = cur.MACD, cur.Signal, cur.Histogram, rsi

	prev := s.prev
	s.prev = cur

	direction := Neutral
	switch {
	case indicators.CrossedAbove(cur.MACD, cur.Signal, prev.MACD, prev.Signal) &&
		indicators.Greater(cur.Histogram, prev.Histogram) &&
		indicators.Greater(rsi, 50):
		direction = Long
	case indicators.CrossedBelow(cur.MACD, cur.Signal, prev.MACD, prev.Signal) &&
		indicators.Less(cur.Histogram, prev.Histogram) &&
		indicators.Less(rsi, 50):
		direction = Short
	}

	// Zero-line cross exits override any entry on the same bar
	if indicators.Less(cur.MACD*prev.MACD, 0) {
		direction = Neutral
	}

	if direction == Neutral {
		return Neutral, 0
	}
	return direction, indicators.Clip(math.Abs(rsi-50)/20, 0, 1)
}
