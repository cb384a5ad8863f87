package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ducminhle1904/directional-signals/internal/features"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// ReplayResult is the outcome of stepping a calculator through a snapshot
type ReplayResult struct {
	Series  *features.AnnotatedSeries
	Feature *features.Feature
	Signals []features.Signal
}

// Replay feeds the snapshot to a stream one closed candle at a time and
// collects every signal at or above minIntensity. The full series is
// computed as well for export.
func Replay(calc features.Calculator, snapshot *types.Snapshot, minIntensity float64) (*ReplayResult, error) {
	stream := calc.NewStream(snapshot.Meta())
	var signals []features.Signal
	for i := 0; i < snapshot.Len(); i++ {
		if _, err := stream.Push(snapshot.Candle(i)); err != nil {
			return nil, err
		}
		if s := stream.Signal(minIntensity); s != nil {
			signals = append(signals, *s)
		}
	}

	series, err := calc.Compute(snapshot)
	if err != nil {
		return nil, err
	}
	return &ReplayResult{Series: series, Feature: stream.Feature(), Signals: signals}, nil
}

// controllerFromFlags builds a resolved controller config for kind with
// inline YAML params; interval, when set, overrides the params.
func controllerFromFlags(kind, connector, pair, interval, inline string, maxRecords int, minIntensity float64) (config.ControllerConfig, error) {
	params, err := indicatorParams(inline, interval)
	if err != nil {
		return config.ControllerConfig{}, err
	}
	cfg := config.ControllerConfig{
		ControllerName: kind,
		ConnectorName:  connector,
		TradingPair:    pair,
		MaxRecords:     maxRecords,
		MinIntensity:   minIntensity,
		Params:         params,
	}
	if err := cfg.Resolve(); err != nil {
		return config.ControllerConfig{}, err
	}
	return cfg, nil
}

func indicatorParams(inline, interval string) (yaml.Node, error) {
	var node yaml.Node
	values := map[string]interface{}{}
	if strings.TrimSpace(inline) != "" {
		if err := yaml.Unmarshal([]byte(inline), &values); err != nil {
			return node, fmt.Errorf("invalid -params: %w", err)
		}
	}
	if interval != "" {
		values["interval"] = interval
	}
	if len(values) == 0 {
		return node, nil
	}
	if err := node.Encode(values); err != nil {
		return node, fmt.Errorf("invalid -params: %w", err)
	}
	return node, nil
}

// controllerFromFile picks the controller with id from a controller file;
// an empty id selects the only controller.
func controllerFromFile(path, id string) (config.ControllerConfig, error) {
	file, err := config.LoadFile(path)
	if err != nil {
		return config.ControllerConfig{}, err
	}
	if id == "" {
		if len(file.Controllers) > 1 {
			return config.ControllerConfig{}, fmt.Errorf("%s defines %d controllers, choose one with -id", path, len(file.Controllers))
		}
		return file.Controllers[0], nil
	}
	ids := make([]string, 0, len(file.Controllers))
	for _, c := range file.Controllers {
		if c.ID == id {
			return c, nil
		}
		ids = append(ids, c.ID)
	}
	return config.ControllerConfig{}, fmt.Errorf("no controller %q in %s (available: %s)", id, path, strings.Join(ids, ", "))
}
