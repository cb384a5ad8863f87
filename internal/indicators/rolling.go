package indicators

import "math"

// RollingWindow keeps the last period values in a circular buffer with a
// running mean and centred sum of squares (Welford), so mean and standard
// deviation cost O(1) per update. The running totals are rebuilt from the
// buffer once per full turn to keep floating point drift bounded, and a
// window holding one repeated value reports exactly that value with zero
// deviation.
type RollingWindow struct {
	period      int
	buffer      []float64
	index       int
	count       int
	sinceResync int
	mean        float64
	m2          float64
	last        float64
	run         int
}

// NewRollingWindow creates a rolling window of the given period
func NewRollingWindow(period int) *RollingWindow {
	return &RollingWindow{
		period: period,
		buffer: make([]float64, period),
	}
}

// Push adds a value, evicting the oldest one once the window is full
func (r *RollingWindow) Push(v float64) {
	if r.count > 0 && v == r.last {
		r.run++
	} else {
		r.run = 1
	}
	r.last = v

	old := r.buffer[r.index]
	if r.count < r.period {
		r.count++
		delta := v - r.mean
		r.mean += delta / float64(r.count)
		r.m2 += delta * (v - r.mean)
	} else {
		prevMean := r.mean
		r.mean += (v - old) / float64(r.period)
		r.m2 += (v - old) * (v - r.mean + old - prevMean)
	}

	r.buffer[r.index] = v
	r.index = (r.index + 1) % r.period

	r.sinceResync++
	if r.count == r.period && r.sinceResync >= r.period {
		r.resync()
	}
}

func (r *RollingWindow) resync() {
	sum := 0.0
	for _, b := range r.buffer {
		sum += b
	}
	mean := sum / float64(r.period)

	m2 := 0.0
	for _, b := range r.buffer {
		d := b - mean
		m2 += d * d
	}
	r.mean = mean
	r.m2 = m2
	r.sinceResync = 0
}

// IsReady reports whether the window holds period values
func (r *RollingWindow) IsReady() bool {
	return r.count >= r.period
}

func (r *RollingWindow) flat() bool {
	return r.run >= r.period
}

// Mean returns the window average, NaN until the window is full
func (r *RollingWindow) Mean() float64 {
	if !r.IsReady() {
		return math.NaN()
	}
	if r.flat() {
		return r.last
	}
	return r.mean
}

// StdDev returns the population standard deviation of the window, NaN
// until the window is full. A negative variance from rounding reads as 0.
func (r *RollingWindow) StdDev() float64 {
	if !r.IsReady() {
		return math.NaN()
	}
	if r.flat() {
		return 0
	}
	return math.Sqrt(math.Max(r.m2/float64(r.period), 0))
}
