package indicators

import "math"

// RSIEpsilon keeps the relative strength finite when the average loss is 0
const RSIEpsilon = 1e-12

// RSI represents the Relative Strength Index technical indicator with
// Wilder smoothing of gains and losses.
type RSI struct {
	length int
	gains  *Wilder
	losses *Wilder
	prev   float64
	count  int
	value  float64
}

// NewRSI creates a new RSI indicator
func NewRSI(length int) *RSI {
	return &RSI{
		length: length,
		gains:  NewWilder(length),
		losses: NewWilder(length),
		prev:   math.NaN(),
		value:  math.NaN(),
	}
}

// Update feeds one close and returns the RSI in [0, 100]. The value is NaN
// until length price changes have been observed.
func (r *RSI) Update(close float64) float64 {
	r.count++
	if r.count == 1 {
		r.prev = close
		return r.value
	}

	delta := close - r.prev
	r.prev = close

	avgGain := r.gains.Update(math.Max(delta, 0))
	avgLoss := r.losses.Update(math.Max(-delta, 0))

	rs := avgGain / (avgLoss + RSIEpsilon)
	rsi := 100 - 100/(1+rs)

	if r.count-1 >= r.length {
		r.value = rsi
	}
	return r.value
}

// Value returns the last RSI value
func (r *RSI) Value() float64 {
	return r.value
}

// IsReady reports whether the RSI is defined
func (r *RSI) IsReady() bool {
	return !math.IsNaN(r.value)
}
