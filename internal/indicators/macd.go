package indicators

import "math"

// MACDValue holds one bar of MACD output
type MACDValue struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD represents the Moving Average Convergence Divergence indicator
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
	last   MACDValue
}

// NewMACD creates a new MACD indicator
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	nan := math.NaN()
	return &MACD{
		fast:   NewEMA(fastPeriod),
		slow:   NewEMA(slowPeriod),
		signal: NewEMA(signalPeriod),
		last:   MACDValue{MACD: nan, Signal: nan, Histogram: nan},
	}
}

// Update feeds one close. The signal line starts on the first bar where the
// MACD line is defined.
func (m *MACD) Update(close float64) MACDValue {
	fast := m.fast.Update(close)
	slow := m.slow.Update(close)

	line := math.NaN()
	if !math.IsNaN(fast) && !math.IsNaN(slow) {
		line = fast - slow
	}
	signal := m.signal.Update(line)

	hist := math.NaN()
	if !math.IsNaN(line) && !math.IsNaN(signal) {
		hist = line - signal
	}

	m.last = MACDValue{MACD: line, Signal: signal, Histogram: hist}
	return m.last
}

// Value returns the last computed bar
func (m *MACD) Value() MACDValue {
	return m.last
}
