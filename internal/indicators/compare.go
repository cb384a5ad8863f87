package indicators

import "math"

// The comparisons below are false whenever either side is NaN, so an
// undefined indicator value can never satisfy an entry condition.

// Greater reports a > b
func Greater(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b) && a > b
}

// GreaterOrEqual reports a >= b
func GreaterOrEqual(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b) && a >= b
}

// Less reports a < b
func Less(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b) && a < b
}

// LessOrEqual reports a <= b
func LessOrEqual(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b) && a <= b
}

// CrossedAbove reports a rising through b between the previous and current bar
func CrossedAbove(a, b, prevA, prevB float64) bool {
	return Greater(a, b) && LessOrEqual(prevA, prevB)
}

// CrossedBelow reports a falling through b between the previous and current bar
func CrossedBelow(a, b, prevA, prevB float64) bool {
	return Less(a, b) && GreaterOrEqual(prevA, prevB)
}

// Clip limits v to [lo, hi]; NaN reads as lo
func Clip(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
