package notifications

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/directional-signals/internal/features"
)

// SignalAlert describes a signal for a notifier. price is the close of the
// bar the signal was taken on.
func SignalAlert(signal features.Signal, connector string, price float64) Alert {
	direction := signal.Direction()
	level := LevelSuccess
	if direction == features.Short {
		level = LevelWarning
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pair: %s\n", signal.TradingPair)
	if connector != "" {
		fmt.Fprintf(&b, "Connector: %s\n", connector)
	}
	fmt.Fprintf(&b, "Direction: %s\n", strings.ToUpper(direction.String()))
	fmt.Fprintf(&b, "Intensity: %.2f\n", signal.Intensity())
	fmt.Fprintf(&b, "Price: %.8g\n", price)
	fmt.Fprintf(&b, "Time: %s", signal.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))

	return Alert{
		Level:   level,
		Title:   fmt.Sprintf("%s %s", signal.SignalName, strings.ToUpper(direction.String())),
		Message: b.String(),
	}
}
