package registry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of ta_calculations_total.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeInvalidParams    = "invalid_parameters"
	OutcomeCalculationError = "calculation_error"
	OutcomeUnknown          = "unknown_indicator"
	OutcomeCanceled         = "canceled"
)

// Metrics holds the Prometheus collectors of a Registry.
type Metrics struct {
	CalculationsTotal   *prometheus.CounterVec   // labels: indicator, outcome
	CalculationDuration *prometheus.HistogramVec // labels: indicator
	BatchSize           prometheus.Histogram
}

// NewMetrics builds the collectors and registers them on reg. Collectors that
// are already registered there are reused, so several registries may share
// one prometheus.Registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CalculationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ta_calculations_total",
			Help: "Indicator calculations by indicator and outcome",
		}, []string{"indicator", "outcome"}),
		CalculationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ta_calculation_duration_seconds",
			Help:    "Indicator calculation latency",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"indicator"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ta_batch_requests",
			Help:    "Requests per batch calculation",
			Buckets: prometheus.LinearBuckets(1, 2, 8),
		}),
	}

	var err error
	if m.CalculationsTotal, err = register(reg, m.CalculationsTotal); err != nil {
		return nil, err
	}
	if m.CalculationDuration, err = register(reg, m.CalculationDuration); err != nil {
		return nil, err
	}
	if m.BatchSize, err = register(reg, m.BatchSize); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
