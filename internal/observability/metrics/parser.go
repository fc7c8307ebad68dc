package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ParserMetrics counts what report parsing produced.
type ParserMetrics struct {
	ReportsParsed    *prometheus.CounterVec // reports by building
	FilesSkipped     *prometheus.CounterVec // skipped files by reason
	RecordsExtracted *prometheus.CounterVec // devices, lights and notes
}

// NewParserMetrics creates the parser collectors and registers them.
func NewParserMetrics(registry *prometheus.Registry) (*ParserMetrics, error) {
	m := &ParserMetrics{
		ReportsParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fireinspect_reports_parsed_total",
				Help: "Reports parsed, by building",
			},
			[]string{"building"},
		),
		FilesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fireinspect_files_skipped_total",
				Help: "Report files skipped, by reason",
			},
			[]string{"reason"},
		),
		RecordsExtracted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fireinspect_records_extracted_total",
				Help: "Records extracted from reports, by kind",
			},
			[]string{"kind"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register parser metrics: %w", err)
	}
	return m, nil
}

func (m *ParserMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.ReportsParsed, m.FilesSkipped, m.RecordsExtracted}
}

// Describe implements the Collector interface
func (m *ParserMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *ParserMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// RecordReport counts one parsed report and its records. Safe on a nil receiver.
func (m *ParserMetrics) RecordReport(building string, devices, lights, notes int) {
	if m == nil {
		return
	}
	m.ReportsParsed.WithLabelValues(building).Inc()
	m.RecordsExtracted.WithLabelValues(KindDevice).Add(float64(devices))
	m.RecordsExtracted.WithLabelValues(KindLight).Add(float64(lights))
	m.RecordsExtracted.WithLabelValues(KindNote).Add(float64(notes))
}

// RecordSkip counts one skipped file
func (m *ParserMetrics) RecordSkip(reason string) {
	if m == nil {
		return
	}
	m.FilesSkipped.WithLabelValues(reason).Inc()
}
