package features

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/directional-signals/pkg/config"
)

func TestNew_EveryKind(t *testing.T) {
	expected := map[config.Kind]string{
		config.KindEMACrossover: "ema_crossover_25_50",
		config.KindMACDMomentum: "macd_momentum_12_26_9",
		config.KindRSI:          "rsi_14",
		config.KindBollinger:    "bollinger_20_2.0",
	}

	for _, kind := range config.Kinds {
		calc, err := NewDefault(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, calc.Kind())
		assert.Equal(t, string(kind), calc.Name())
		assert.Equal(t, expected[kind], calc.SignalName())
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = NewDefault("supertrend")
	assert.Error(t, err)

	invalid := config.DefaultOscillatorConfig()
	invalid.Oversold = 80
	calc, err := New(invalid)
	assert.Error(t, err)
	assert.Nil(t, calc)
}

func TestFeature_JSONWritesNaNAsNull(t *testing.T) {
	feature := &Feature{
		FeatureName: "rsi",
		TradingPair: "BTCUSDT",
		Value:       map[string]float64{"rsi": math.NaN(), "price": 101.5},
		Info:        map[string]interface{}{"length": 14},
	}

	data, err := json.Marshal(feature)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rsi":null`)
	assert.Contains(t, string(data), `"price":101.5`)
	assert.Contains(t, string(data), `"feature_name":"rsi"`)

	var decoded Feature
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, math.IsNaN(decoded.Value["rsi"]))
	assert.Equal(t, 101.5, decoded.Value["price"])
	assert.Equal(t, "BTCUSDT", decoded.TradingPair)
}

func TestSignal_DirectionAndIntensity(t *testing.T) {
	assert.Equal(t, Short, (&Signal{Value: -0.7}).Direction())
	assert.Equal(t, Long, (&Signal{Value: 0.7}).Direction())
	assert.Equal(t, 0.7, (&Signal{Value: -0.7}).Intensity())
	assert.Equal(t, "long", Long.String())
	assert.Equal(t, "neutral", Neutral.String())
}
