package features

import (
	"fmt"

	"github.com/ducminhle1904/directional-signals/internal/indicators"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// Oscillator is the RSI mean-reversion bias: long below oversold, short
// above overbought, with intensity growing toward 0 and 100.
type Oscillator struct {
	*base
	cfg config.OscillatorConfig
}

// NewOscillator validates cfg and creates the calculator
func NewOscillator(cfg config.OscillatorConfig) (*Oscillator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Oscillator{cfg: cfg}
	o.base = &base{def: &definition{
		kind:        config.KindRSI,
		featureName: string(config.KindRSI),
		signalName:  fmt.Sprintf("rsi_%d", cfg.Length),
		category:    "rsi",
		description: "Relative Strength Index feature",
		interval:    cfg.Interval,
		columns:     []string{ColumnRSI},
		required:    []string{types.ColumnClose},
		warmup:      cfg.Length,
		info: map[string]interface{}{
			"length":     cfg.Length,
			"oversold":   cfg.Oversold,
			"overbought": cfg.Overbought,
		},
		newStepper: func() stepper {
			return &oscillatorStepper{cfg: cfg, rsi: indicators.NewRSI(cfg.Length)}
		},
	}}
	return o, nil
}

// Config returns the calculator configuration
func (o *Oscillator) Config() config.OscillatorConfig {
	return o.cfg
}

type oscillatorStepper struct {
	cfg config.OscillatorConfig
	rsi *indicators.RSI
}

func (s *oscillatorStepper) step(c types.OHLCV, out []float64) (Direction, float64) {
	rsi := s.rsi.Update(c.Close)
	out[0] = rsi

	switch {
	case indicators.Less(rsi, s.cfg.Oversold):
		return Long, indicators.Clip((s.cfg.Oversold-rsi)/s.cfg.Oversold, 0, 1)
	case indicators.Greater(rsi, s.cfg.Overbought):
		return Short, indicators.Clip((rsi-s.cfg.Overbought)/(100-s.cfg.Overbought), 0, 1)
	default:
		return Neutral, 0
	}
}
