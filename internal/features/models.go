package features

import (
	"encoding/json"
	"math"
	"time"
)

// Direction is the discrete trade bias of a bar
type Direction int

const (
	Short   Direction = -1
	Neutral Direction = 0
	Long    Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "neutral"
	}
}

// Evaluation is the direction and intensity of the latest bar
type Evaluation struct {
	Direction Direction
	Intensity float64
}

// Feature is the latest indicator state of one trading pair
type Feature struct {
	FeatureName   string                 `json:"feature_name"`
	TradingPair   string                 `json:"trading_pair"`
	ConnectorName string                 `json:"connector_name"`
	Timestamp     time.Time              `json:"timestamp"`
	Value         map[string]float64     `json:"value"`
	Info          map[string]interface{} `json:"info"`
}

// MarshalJSON writes undefined values as null
func (f Feature) MarshalJSON() ([]byte, error) {
	type alias Feature
	value := make(map[string]*float64, len(f.Value))
	for k, v := range f.Value {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			value[k] = nil
			continue
		}
		v := v
		value[k] = &v
	}
	return json.Marshal(struct {
		alias
		Value map[string]*float64 `json:"value"`
	}{alias: alias(f), Value: value})
}

// UnmarshalJSON reads null values back as NaN
func (f *Feature) UnmarshalJSON(data []byte) error {
	type alias Feature
	aux := struct {
		*alias
		Value map[string]*float64 `json:"value"`
	}{alias: (*alias)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	f.Value = make(map[string]float64, len(aux.Value))
	for k, v := range aux.Value {
		if v == nil {
			f.Value[k] = math.NaN()
			continue
		}
		f.Value[k] = *v
	}
	return nil
}

// Direction returns the signal entry of the value map
func (f *Feature) Direction() Direction {
	return Direction(int(f.Value[ValueSignal]))
}

// Signal is a directional call whose value is direction times intensity
type Signal struct {
	SignalName  string    `json:"signal_name"`
	TradingPair string    `json:"trading_pair"`
	Category    string    `json:"category"`
	Value       float64   `json:"value"`
	Timestamp   time.Time `json:"timestamp"`
}

// Direction returns the sign of the signal value
func (s *Signal) Direction() Direction {
	switch {
	case s.Value > 0:
		return Long
	case s.Value < 0:
		return Short
	default:
		return Neutral
	}
}

// Intensity returns the magnitude of the signal value
func (s *Signal) Intensity() float64 {
	return math.Abs(s.Value)
}
