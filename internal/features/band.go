package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ducminhle1904/directional-signals/internal/indicators"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// Band derived columns
const (
	ColumnBBUpper = "bb_upper"
	ColumnBBMid   = "bb_mid"
	ColumnBBLower = "bb_lower"
	ColumnBBWidth = "bb_width"
	ColumnBandPos = "band_pos"
)

// Band is the Bollinger mean-reversion bias: long below the lower band and
// short above the upper band. Intensity is the distance from the middle
// band as a fraction of the band width.
type Band struct {
	*base
	cfg config.BandConfig
}

// NewBand validates cfg and creates the calculator
func NewBand(cfg config.BandConfig) (*Band, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Band{cfg: cfg}
	b.base = &base{def: &definition{
		kind:        config.KindBollinger,
		featureName: string(config.KindBollinger),
		signalName:  fmt.Sprintf("bollinger_%d_%s", cfg.Length, formatMultiplier(cfg.Mult)),
		category:    "bb",
		description: "Bollinger Bands feature",
		interval:    cfg.Interval,
		columns:     []string{ColumnBBUpper, ColumnBBMid, ColumnBBLower, ColumnBBWidth, ColumnBandPos},
		required:    []string{types.ColumnClose},
		warmup:      cfg.Length - 1,
		info: map[string]interface{}{
			"length": cfg.Length,
			"mult":   cfg.Mult,
		},
		newStepper: func() stepper {
			return &bandStepper{bands: indicators.NewBollingerBands(cfg.Length, cfg.Mult)}
		},
	}}
	return b, nil
}

// Config returns the calculator configuration
func (b *Band) Config() config.BandConfig {
	return b.cfg
}

type bandStepper struct {
	bands *indicators.BollingerBands
}

func (s *bandStepper) step(c types.OHLCV, out []float64) (Direction, float64) {
	v := s.bands.Update(c.Close)
	width := v.Upper - v.Lower

	relWidth := width / v.Middle
	if v.Middle == 0 {
		relWidth = 0
	}

	// A collapsed band puts the close in the middle and carries no bias
	bandPos := math.NaN()
	degenerate := width == 0
	switch {
	case degenerate:
		bandPos = 0.5
	case !math.IsNaN(width):
		bandPos = (c.Close - v.Lower) / width
	}

	out[0], out[1], out[2], out[3], out[4] = v.Upper, v.Middle, v.Lower, relWidth, bandPos

	if degenerate || math.IsNaN(width) {
		return Neutral, 0
	}

	switch {
	case indicators.Less(c.Close, v.Lower):
		return Long, indicators.Clip(math.Max(v.Middle-c.Close, 0)/width, 0, 1)
	case indicators.Greater(c.Close, v.Upper):
		return Short, indicators.Clip(math.Max(c.Close-v.Middle, 0)/width, 0, 1)
	default:
		return Neutral, 0
	}
}

// formatMultiplier renders a float the way signal names have always been
// written: integral values keep one decimal, "2.0" rather than "2".
func formatMultiplier(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
