package indicators

import "math"

// EMA represents the Exponential Moving Average technical indicator.
// The first value is the simple average of the first period inputs and
// every later value uses alpha = 2/(period+1).
type EMA struct {
	period int
	alpha  float64
	count  int
	sum    float64
	value  float64
}

// NewEMA creates a new EMA indicator
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
		value:  math.NaN(),
	}
}

// Update feeds one value and returns the current average, NaN until
// period values have been seen. NaN inputs are skipped, so an EMA over a
// series with a NaN prefix starts counting at its first defined value.
func (e *EMA) Update(v float64) float64 {
	if math.IsNaN(v) {
		return e.value
	}

	e.count++
	if e.count <= e.period {
		e.sum += v
		if e.count == e.period {
			e.value = e.sum / float64(e.period)
		}
		return e.value
	}

	// EMA = (Value * Alpha) + (Previous EMA * (1 - Alpha))
	e.value = v*e.alpha + e.value*(1-e.alpha)
	return e.value
}

// Value returns the last computed average
func (e *EMA) Value() float64 {
	return e.value
}

// IsReady reports whether the seed average has been formed
func (e *EMA) IsReady() bool {
	return e.count >= e.period
}
