package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

// DefaultMinIntensity is the default gate for signal emission
const DefaultMinIntensity = 0.6

// ControllerConfig describes one directional controller: which candles it
// reads and which indicator family evaluates them.
type ControllerConfig struct {
	ID                 string    `yaml:"id"`
	ControllerName     string    `yaml:"controller_name" validate:"required"`
	ConnectorName      string    `yaml:"connector_name" default:"bybit" validate:"required"`
	TradingPair        string    `yaml:"trading_pair" validate:"required"`
	CandlesConnector   string    `yaml:"candles_connector"`
	CandlesTradingPair string    `yaml:"candles_trading_pair"`
	MaxRecords         int       `yaml:"max_records" default:"1000" validate:"gte=1"`
	MinIntensity       float64   `yaml:"min_intensity" default:"0.6" validate:"gte=0,lte=1"`
	Params             yaml.Node `yaml:"params"`

	Indicator IndicatorConfig `yaml:"-"`
}

// UnmarshalYAML applies defaults before decoding so explicit zero values
// in the file are kept.
func (c *ControllerConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ControllerConfig
	var p plain
	if err := applyDefaults(&p); err != nil {
		return err
	}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = ControllerConfig(p)
	return nil
}

// Interval returns the candle interval of the configured indicator
func (c *ControllerConfig) Interval() string {
	if c.Indicator == nil {
		return ""
	}
	return c.Indicator.GetInterval()
}

// Kind returns the indicator family of the controller
func (c *ControllerConfig) Kind() Kind {
	if c.Indicator == nil {
		return ""
	}
	return c.Indicator.Kind()
}

// Resolve fills the candle source fallbacks, decodes the indicator params
// and validates the result.
func (c *ControllerConfig) Resolve() error {
	if err := validateStruct("controller", c); err != nil {
		return err
	}

	kind, err := ParseKind(c.ControllerName)
	if err != nil {
		return err
	}
	c.ControllerName = string(kind)

	indicator, err := DecodeIndicatorConfig(kind, &c.Params)
	if err != nil {
		return err
	}
	c.Indicator = indicator

	if c.CandlesConnector == "" {
		c.CandlesConnector = c.ConnectorName
	}
	if c.CandlesTradingPair == "" {
		c.CandlesTradingPair = c.TradingPair
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("%s_%s_%s", c.ControllerName, c.TradingPair, c.Interval())
	}
	return nil
}

// File is the controller file layout
type File struct {
	Controllers []ControllerConfig `yaml:"controllers"`
}

// Parse decodes and resolves a controller file
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, sigerrors.WrapError(err, sigerrors.ErrorCategoryConfiguration, "config", "parse")
	}
	if len(f.Controllers) == 0 {
		return nil, sigerrors.NewConfigurationError("config", "parse", "no controllers configured")
	}

	seen := make(map[string]bool, len(f.Controllers))
	for i := range f.Controllers {
		c := &f.Controllers[i]
		if err := c.Resolve(); err != nil {
			return nil, fmt.Errorf("controller %d: %w", i, err)
		}
		if seen[c.ID] {
			return nil, sigerrors.NewConfigurationError("config", "parse", fmt.Sprintf("duplicate controller id %q", c.ID))
		}
		seen[c.ID] = true
	}
	return &f, nil
}

// LoadFile reads and parses a controller file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sigerrors.WrapError(err, sigerrors.ErrorCategoryConfiguration, "config", "read").
			WithContext("path", path)
	}
	return Parse(data)
}
