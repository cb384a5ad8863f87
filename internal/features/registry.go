package features

import (
	"fmt"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/pkg/config"
)

// Constructor builds a calculator from its typed configuration
type Constructor func(cfg config.IndicatorConfig) (Calculator, error)

var registry = map[config.Kind]Constructor{
	config.KindEMACrossover: func(cfg config.IndicatorConfig) (Calculator, error) {
		c, ok := cfg.(*config.TrendCrossoverConfig)
		if !ok {
			return nil, configMismatch(config.KindEMACrossover, cfg)
		}
		calc, err := NewTrendCrossover(*c)
		if err != nil {
			return nil, err
		}
		return calc, nil
	},
	config.KindMACDMomentum: func(cfg config.IndicatorConfig) (Calculator, error) {
		c, ok := cfg.(*config.MomentumConfig)
		if !ok {
			return nil, configMismatch(config.KindMACDMomentum, cfg)
		}
		calc, err := NewMomentum(*c)
		if err != nil {
			return nil, err
		}
		return calc, nil
	},
	config.KindRSI: func(cfg config.IndicatorConfig) (Calculator, error) {
		c, ok := cfg.(*config.OscillatorConfig)
		if !ok {
			return nil, configMismatch(config.KindRSI, cfg)
		}
		calc, err := NewOscillator(*c)
		if err != nil {
			return nil, err
		}
		return calc, nil
	},
	config.KindBollinger: func(cfg config.IndicatorConfig) (Calculator, error) {
		c, ok := cfg.(*config.BandConfig)
		if !ok {
			return nil, configMismatch(config.KindBollinger, cfg)
		}
		calc, err := NewBand(*c)
		if err != nil {
			return nil, err
		}
		return calc, nil
	},
}

func configMismatch(kind config.Kind, cfg config.IndicatorConfig) error {
	return sigerrors.NewConfigurationError("registry", "new",
		fmt.Sprintf("%s expects its own config, got %T", kind, cfg))
}

// New builds the calculator for cfg
func New(cfg config.IndicatorConfig) (Calculator, error) {
	if cfg == nil {
		return nil, sigerrors.NewConfigurationError("registry", "new", "nil indicator config")
	}
	constructor, ok := registry[cfg.Kind()]
	if !ok {
		return nil, sigerrors.NewConfigurationError("registry", "new", fmt.Sprintf("unknown indicator kind %q", cfg.Kind()))
	}
	return constructor(cfg)
}

// NewDefault builds the calculator of kind with its default configuration
func NewDefault(kind config.Kind) (Calculator, error) {
	cfg, err := config.NewIndicatorConfig(kind)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}
