package indicators

import "math"

// ADXValue holds one bar of the directional movement system
type ADXValue struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// ADX represents the Average Directional Index technical indicator.
// True range and directional movement are smoothed with SMMA over period
// bars; ADX is the SMMA of DX and is first defined on bar 2*period-1.
type ADX struct {
	period    int
	trSmooth  *SMMA
	plusDM    *SMMA
	minusDM   *SMMA
	adx       *SMMA
	count     int
	prevHigh  float64
	prevLow   float64
	prevClose float64
	last      ADXValue
}

// NewADX creates a new ADX indicator
func NewADX(period int) *ADX {
	nan := math.NaN()
	return &ADX{
		period:   period,
		trSmooth: NewSMMA(period),
		plusDM:   NewSMMA(period),
		minusDM:  NewSMMA(period),
		adx:      NewSMMA(period),
		last:     ADXValue{ADX: nan, PlusDI: nan, MinusDI: nan},
	}
}

// Update feeds one bar
func (a *ADX) Update(high, low, close float64) ADXValue {
	a.count++
	if a.count == 1 {
		a.prevHigh, a.prevLow, a.prevClose = high, low, close
		return a.last
	}

	tr := math.Max(high-low, math.Max(math.Abs(high-a.prevClose), math.Abs(low-a.prevClose)))
	upMove := high - a.prevHigh
	downMove := a.prevLow - low

	plusDM := 0.0
	if upMove > downMove && upMove > 0 {
		plusDM = upMove
	}
	minusDM := 0.0
	if downMove > upMove && downMove > 0 {
		minusDM = downMove
	}
	a.prevHigh, a.prevLow, a.prevClose = high, low, close

	smoothTR := a.trSmooth.Update(tr)
	smoothPlus := a.plusDM.Update(plusDM)
	smoothMinus := a.minusDM.Update(minusDM)
	if math.IsNaN(smoothTR) {
		return a.last
	}

	// Zero range bars carry no direction
	plusDI, minusDI := 0.0, 0.0
	if smoothTR > 0 {
		plusDI = 100 * smoothPlus / smoothTR
		minusDI = 100 * smoothMinus / smoothTR
	}

	dx := 0.0
	if total := plusDI + minusDI; total > 0 {
		dx = 100 * math.Abs(plusDI-minusDI) / total
	}

	a.last = ADXValue{ADX: a.adx.Update(dx), PlusDI: plusDI, MinusDI: minusDI}
	return a.last
}

// Value returns the last computed bar
func (a *ADX) Value() ADXValue {
	return a.last
}

// GetSignalStrength maps the trend strength to [0, 1], saturating at 40
func (a *ADX) GetSignalStrength() float64 {
	return ADXStrength(a.last.ADX)
}

// ADXStrength maps an ADX reading to [0, 1], saturating at 40. NaN reads as 0.
func ADXStrength(adx float64) float64 {
	if math.IsNaN(adx) {
		return 0
	}
	return Clip(adx/40.0, 0, 1)
}
