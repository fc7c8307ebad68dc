package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// RemoteMetrics tracks calls to the remote document store and the outcome of
// building updates.
type RemoteMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	UpdatesTotal    *prometheus.CounterVec
}

// NewRemoteMetrics creates the remote collectors and registers them.
func NewRemoteMetrics(registry *prometheus.Registry) (*RemoteMetrics, error) {
	m := &RemoteMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fireinspect_remote_requests_total",
				Help: "Requests to the remote store, by operation and status code",
			},
			[]string{"operation", "status_code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fireinspect_remote_request_duration_seconds",
				Help:    "Duration of requests to the remote store",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, // 50ms to 30s
			},
			[]string{"operation"},
		),
		UpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fireinspect_building_updates_total",
				Help: "Building updates, by outcome",
			},
			[]string{"outcome"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register remote metrics: %w", err)
	}
	return m, nil
}

func (m *RemoteMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.RequestsTotal, m.RequestDuration, m.UpdatesTotal}
}

// Describe implements the Collector interface
func (m *RemoteMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *RemoteMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// RecordRequest records one remote request. A zero status code means no
// response was received.
func (m *RemoteMetrics) RecordRequest(operation string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	status := StatusTransportError
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordUpdate records the outcome for one building
func (m *RemoteMetrics) RecordUpdate(outcome string) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(outcome).Inc()
}
