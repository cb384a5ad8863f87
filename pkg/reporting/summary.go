package reporting

import (
	"time"

	"github.com/ducminhle1904/directional-signals/internal/features"
)

// ReplaySummary describes one evaluated series
type ReplaySummary struct {
	Feature     string
	SignalName  string
	Connector   string
	TradingPair string
	Interval    string
	Warmup      int

	Bars    int
	Long    int
	Short   int
	Neutral int

	Signals      int
	LongSignals  int
	ShortSignals int
	MaxIntensity float64
	AvgIntensity float64

	First time.Time
	Last  time.Time
	Final features.Evaluation
}

// Summarize counts the directions of series and the emitted signals.
// AvgIntensity is taken over directional bars only.
func Summarize(calc features.Calculator, series *features.AnnotatedSeries, signals []features.Signal) ReplaySummary {
	meta := series.Snapshot().Meta()
	s := ReplaySummary{
		Feature:     calc.Name(),
		SignalName:  calc.SignalName(),
		Connector:   meta.Connector,
		TradingPair: meta.TradingPair,
		Interval:    meta.Interval,
		Warmup:      calc.WarmupPeriod(),
		Bars:        series.Len(),
		Signals:     len(signals),
		Final:       series.Evaluation(),
	}

	if ts := series.Snapshot().Timestamps(); len(ts) > 0 {
		s.First = ts[0]
		s.Last = ts[len(ts)-1]
	}

	var sum float64
	intensities := series.Intensities()
	for i, d := range series.Directions() {
		switch d {
		case features.Long:
			s.Long++
		case features.Short:
			s.Short++
		default:
			s.Neutral++
			continue
		}
		sum += intensities[i]
		if intensities[i] > s.MaxIntensity {
			s.MaxIntensity = intensities[i]
		}
	}
	if directional := s.Long + s.Short; directional > 0 {
		s.AvgIntensity = sum / float64(directional)
	}

	for i := range signals {
		switch signals[i].Direction() {
		case features.Long:
			s.LongSignals++
		case features.Short:
			s.ShortSignals++
		}
	}
	return s
}
