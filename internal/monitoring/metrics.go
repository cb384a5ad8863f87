package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector of the process
var Registry = prometheus.NewRegistry()

var (
	// Evaluation metrics
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_evaluations_total",
			Help: "Total number of controller evaluation cycles",
		},
		[]string{"controller", "result"},
	)

	evaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signals_evaluation_duration_seconds",
			Help:    "Time spent computing one controller cycle",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"kind"},
	)

	currentDirection = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signals_direction",
			Help: "Latest direction of a controller (-1, 0, 1)",
		},
		[]string{"controller"},
	)

	currentIntensity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signals_intensity",
			Help: "Latest intensity of a controller",
		},
		[]string{"controller"},
	)

	// Emission metrics
	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_emitted_total",
			Help: "Total number of signals that cleared the intensity gate",
		},
		[]string{"signal", "side"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_deliveries_total",
			Help: "Total number of feature and signal deliveries per sink",
		},
		[]string{"sink", "result"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	Registry.MustRegister(
		evaluationsTotal,
		evaluationDuration,
		currentDirection,
		currentIntensity,
		signalsTotal,
		deliveriesTotal,
		errorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// MetricsHandler serves the Prometheus metrics endpoint
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// RecordEvaluation records one finished cycle of a controller
func RecordEvaluation(controller, kind string, direction int, intensity float64, took time.Duration) {
	evaluationsTotal.WithLabelValues(controller, "ok").Inc()
	evaluationDuration.WithLabelValues(kind).Observe(took.Seconds())
	currentDirection.WithLabelValues(controller).Set(float64(direction))
	currentIntensity.WithLabelValues(controller).Set(intensity)
}

// RecordEvaluationFailure records a failed cycle and its error category
func RecordEvaluationFailure(controller, category string) {
	evaluationsTotal.WithLabelValues(controller, "error").Inc()
	errorsTotal.WithLabelValues(category).Inc()
}

// RecordSignal records an emitted signal
func RecordSignal(signalName string, value float64) {
	side := "long"
	if value < 0 {
		side = "short"
	}
	signalsTotal.WithLabelValues(signalName, side).Inc()
}

// RecordDelivery records the outcome of one publish to a sink
func RecordDelivery(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	deliveriesTotal.WithLabelValues(sink, result).Inc()
}

// RecordError records an error metric
func RecordError(category string) {
	errorsTotal.WithLabelValues(category).Inc()
}
