package storage

import (
	"fmt"
	"strings"
)

// FeatureKey identifies the latest feature of one evaluator on one market,
// e.g. "bybit:BTCUSDT:rsi".
func FeatureKey(connector, pair, featureName string) string {
	return fmt.Sprintf("%s:%s:%s", normalizeKey(connector), strings.ToUpper(pair), featureName)
}

// SignalKey identifies the signal history of one signal name on one pair
func SignalKey(pair, signalName string) string {
	return fmt.Sprintf("%s:%s", strings.ToUpper(pair), signalName)
}

func normalizeKey(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s)
}
