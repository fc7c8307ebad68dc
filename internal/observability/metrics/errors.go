package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/welling-fm/fireinspect/internal/errors"
)

// ErrorMetrics counts enhanced errors as they are built.
type ErrorMetrics struct {
	ErrorsTotal *prometheus.CounterVec
}

// NewErrorMetrics creates the error counter and registers it.
func NewErrorMetrics(registry *prometheus.Registry) (*ErrorMetrics, error) {
	m := &ErrorMetrics{
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fireinspect_errors_total",
				Help: "Errors raised, by component and category",
			},
			[]string{"component", "category"},
		),
	}
	if err := registry.Register(m.ErrorsTotal); err != nil {
		return nil, fmt.Errorf("failed to register error metrics: %w", err)
	}
	return m, nil
}

// Hook returns an error hook that feeds the counter
func (m *ErrorMetrics) Hook() errors.ErrorHook {
	return func(ee *errors.EnhancedError) {
		m.ErrorsTotal.WithLabelValues(ee.GetComponent(), ee.GetCategory()).Inc()
	}
}
