package indicators

// BollingerValue holds one bar of band output
type BollingerValue struct {
	Middle float64
	Upper  float64
	Lower  float64
	StdDev float64
}

// BollingerBands represents the Bollinger Bands indicator: mean and
// population standard deviation of the close over period bars.
type BollingerBands struct {
	period     int
	multiplier float64
	window     *RollingWindow
	last       BollingerValue
}

// NewBollingerBands creates a new Bollinger Bands indicator
func NewBollingerBands(period int, multiplier float64) *BollingerBands {
	return &BollingerBands{
		period:     period,
		multiplier: multiplier,
		window:     NewRollingWindow(period),
	}
}

// Update feeds one close; every field is NaN until period closes are seen
func (b *BollingerBands) Update(close float64) BollingerValue {
	b.window.Push(close)

	mean := b.window.Mean()
	std := b.window.StdDev()
	b.last = BollingerValue{
		Middle: mean,
		Upper:  mean + b.multiplier*std,
		Lower:  mean - b.multiplier*std,
		StdDev: std,
	}
	return b.last
}

// Value returns the last computed bar
func (b *BollingerBands) Value() BollingerValue {
	return b.last
}
