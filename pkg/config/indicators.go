package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

// Kind identifies an indicator family
type Kind string

const (
	KindEMACrossover Kind = "ema_crossover"
	KindMACDMomentum Kind = "macd_momentum"
	KindRSI          Kind = "rsi"
	KindBollinger    Kind = "bollinger"
)

// Kinds lists every supported indicator family
var Kinds = []Kind{KindEMACrossover, KindMACDMomentum, KindRSI, KindBollinger}

// ParseKind converts a name or a common alias to a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ema_crossover", "ema-crossover", "ema", "trend":
		return KindEMACrossover, nil
	case "macd_momentum", "macd-momentum", "macd", "momentum":
		return KindMACDMomentum, nil
	case "rsi", "oscillator":
		return KindRSI, nil
	case "bollinger", "bb", "bollinger_bands", "band":
		return KindBollinger, nil
	default:
		return "", sigerrors.NewConfigurationError("config", "parse_kind", fmt.Sprintf("unknown indicator kind %q", s))
	}
}

// IndicatorConfig is implemented by every typed indicator configuration
type IndicatorConfig interface {
	Kind() Kind
	GetInterval() string
	Validate() error
}

// TrendCrossoverConfig configures the EMA crossover evaluator
type TrendCrossoverConfig struct {
	Interval         string  `yaml:"interval" json:"interval" default:"1m" validate:"required"`
	FastPeriod       int     `yaml:"fast_period" json:"fast_period" default:"25" validate:"gte=1,ltfield=SlowPeriod"`
	SlowPeriod       int     `yaml:"slow_period" json:"slow_period" default:"50" validate:"gte=2"`
	VolumePeriod     int     `yaml:"volume_period" json:"volume_period" default:"20" validate:"gte=1"`
	VolumeMultiplier float64 `yaml:"volume_multiplier" json:"volume_multiplier" default:"1.5" validate:"gt=0"`
	ADXPeriod        int     `yaml:"adx_period" json:"adx_period" default:"14" validate:"gte=1"`
	ADXThreshold     float64 `yaml:"adx_threshold" json:"adx_threshold" default:"25" validate:"gte=0,lte=100"`
}

// MomentumConfig configures the MACD momentum evaluator
type MomentumConfig struct {
	Interval   string `yaml:"interval" json:"interval" default:"5m" validate:"required"`
	MACDFast   int    `yaml:"macd_fast" json:"macd_fast" default:"12" validate:"gte=1,ltfield=MACDSlow"`
	MACDSlow   int    `yaml:"macd_slow" json:"macd_slow" default:"26" validate:"gte=2"`
	MACDSignal int    `yaml:"macd_signal" json:"macd_signal" default:"9" validate:"gte=1"`
	RSIPeriod  int    `yaml:"rsi_period" json:"rsi_period" default:"14" validate:"gte=1"`
}

// OscillatorConfig configures the RSI evaluator
type OscillatorConfig struct {
	Interval   string  `yaml:"interval" json:"interval" default:"1m" validate:"required"`
	Length     int     `yaml:"length" json:"length" default:"14" validate:"gte=1"`
	Oversold   float64 `yaml:"oversold" json:"oversold" default:"30" validate:"gt=0,ltfield=Overbought"`
	Overbought float64 `yaml:"overbought" json:"overbought" default:"70" validate:"lt=100"`
}

// BandConfig configures the Bollinger band evaluator
type BandConfig struct {
	Interval string  `yaml:"interval" json:"interval" default:"1m" validate:"required"`
	Length   int     `yaml:"length" json:"length" default:"20" validate:"gte=2"`
	Mult     float64 `yaml:"mult" json:"mult" default:"2.0" validate:"gt=0"`
}

func (c *TrendCrossoverConfig) Kind() Kind { return KindEMACrossover }
func (c *TrendCrossoverConfig) GetInterval() string { return c.Interval }

// Validate checks field ranges and that the fast period is below the slow one
func (c *TrendCrossoverConfig) Validate() error {
	return validateStruct(string(KindEMACrossover), c)
}

func (c *MomentumConfig) Kind() Kind { return KindMACDMomentum }
func (c *MomentumConfig) GetInterval() string { return c.Interval }

// Validate checks field ranges and that the fast period is below the slow one
func (c *MomentumConfig) Validate() error {
	return validateStruct(string(KindMACDMomentum), c)
}

func (c *OscillatorConfig) Kind() Kind { return KindRSI }
func (c *OscillatorConfig) GetInterval() string { return c.Interval }

// Validate checks field ranges and that oversold is below overbought
func (c *OscillatorConfig) Validate() error {
	return validateStruct(string(KindRSI), c)
}

func (c *BandConfig) Kind() Kind { return KindBollinger }
func (c *BandConfig) GetInterval() string { return c.Interval }

func (c *BandConfig) Validate() error {
	return validateStruct(string(KindBollinger), c)
}

// DefaultTrendCrossoverConfig returns the trend crossover defaults
func DefaultTrendCrossoverConfig() *TrendCrossoverConfig {
	cfg := &TrendCrossoverConfig{}
	mustDefaults(cfg)
	return cfg
}

// DefaultMomentumConfig returns the momentum defaults
func DefaultMomentumConfig() *MomentumConfig {
	cfg := &MomentumConfig{}
	mustDefaults(cfg)
	return cfg
}

// DefaultOscillatorConfig returns the RSI defaults
func DefaultOscillatorConfig() *OscillatorConfig {
	cfg := &OscillatorConfig{}
	mustDefaults(cfg)
	return cfg
}

// DefaultBandConfig returns the Bollinger defaults
func DefaultBandConfig() *BandConfig {
	cfg := &BandConfig{}
	mustDefaults(cfg)
	return cfg
}

func mustDefaults(cfg interface{}) {
	if err := applyDefaults(cfg); err != nil {
		panic(err)
	}
}

// NewIndicatorConfig returns the default configuration for a kind
func NewIndicatorConfig(kind Kind) (IndicatorConfig, error) {
	switch kind {
	case KindEMACrossover:
		return DefaultTrendCrossoverConfig(), nil
	case KindMACDMomentum:
		return DefaultMomentumConfig(), nil
	case KindRSI:
		return DefaultOscillatorConfig(), nil
	case KindBollinger:
		return DefaultBandConfig(), nil
	default:
		return nil, sigerrors.NewConfigurationError("config", "new_indicator", fmt.Sprintf("unknown indicator kind %q", kind))
	}
}

// DecodeIndicatorConfig decodes params over the defaults of kind and
// validates the result. Fields absent from params keep their defaults; an
// explicit zero is kept as zero. A nil node yields the validated defaults.
func DecodeIndicatorConfig(kind Kind, params *yaml.Node) (IndicatorConfig, error) {
	cfg, err := NewIndicatorConfig(kind)
	if err != nil {
		return nil, err
	}

	if params != nil && params.Kind != 0 {
		if err := params.Decode(cfg); err != nil {
			return nil, sigerrors.WrapError(err, sigerrors.ErrorCategoryConfiguration, string(kind), "decode")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
