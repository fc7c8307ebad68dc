// Package observability wires the Prometheus collectors of fireinspect onto a
// private registry.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Parser   *metrics.ParserMetrics
	Remote   *metrics.RemoteMetrics
	Errors   *metrics.ErrorMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	parserMetrics, err := metrics.NewParserMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser metrics: %w", err)
	}

	remoteMetrics, err := metrics.NewRemoteMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote metrics: %w", err)
	}

	errorMetrics, err := metrics.NewErrorMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create error metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Parser:   parserMetrics,
		Remote:   remoteMetrics,
		Errors:   errorMetrics,
	}, nil
}

// CountErrors installs the error counter as an enhanced error hook.
func (m *Metrics) CountErrors() {
	errors.AddErrorHook(m.Errors.Hook())
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// WriteTextfile writes the registry for the node_exporter textfile collector.
// An empty path does nothing.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.New(err).
			Component("metrics").
			Category(errors.CategoryFileIO).
			Context("file_path", path).
			Build()
	}
	return nil
}
