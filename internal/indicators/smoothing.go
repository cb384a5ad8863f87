package indicators

import "math"

// Wilder is an exponentially weighted average with alpha = 1/length that is
// seeded with the first value it receives.
type Wilder struct {
	alpha   float64
	value   float64
	started bool
}

// NewWilder creates a Wilder average of the given length
func NewWilder(length int) *Wilder {
	return &Wilder{alpha: 1.0 / float64(length), value: math.NaN()}
}

// Update feeds one value and returns the current average
func (w *Wilder) Update(v float64) float64 {
	if !w.started {
		w.value = v
		w.started = true
		return w.value
	}
	w.value = w.value + w.alpha*(v-w.value)
	return w.value
}

// Value returns the current average
func (w *Wilder) Value() float64 {
	return w.value
}

// SMMA is the smoothed moving average used by ADX: the first value is the
// simple average of period inputs, then (prev*(period-1) + x) / period.
type SMMA struct {
	period int
	count  int
	sum    float64
	value  float64
}

// NewSMMA creates a smoothed moving average
func NewSMMA(period int) *SMMA {
	return &SMMA{period: period, value: math.NaN()}
}

// Update feeds one value; NaN inputs are skipped
func (s *SMMA) Update(v float64) float64 {
	if math.IsNaN(v) {
		return s.value
	}

	s.count++
	if s.count <= s.period {
		s.sum += v
		if s.count == s.period {
			s.value = s.sum / float64(s.period)
		}
		return s.value
	}

	s.value = (s.value*float64(s.period-1) + v) / float64(s.period)
	return s.value
}

// Value returns the current average
func (s *SMMA) Value() float64 {
	return s.value
}

// IsReady reports whether the seed average has been formed
func (s *SMMA) IsReady() bool {
	return s.count >= s.period
}
