package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherFamily(t *testing.T, registry *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func TestRemoteRequestDurationHistogram(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewRemoteMetrics(registry)
	require.NoError(t, err)

	m.RecordRequest(OpList, 200, 0.07)
	m.RecordRequest(OpList, 503, 0.3)

	family := gatherFamily(t, registry, "fireinspect_remote_request_duration_seconds")
	assert.Equal(t, dto.MetricType_HISTOGRAM, family.GetType())
	require.Len(t, family.GetMetric(), 1)

	h := family.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 0.37, h.GetSampleSum(), 1e-9)

	// 0.07 is above the first bucket bound and within the second
	buckets := h.GetBucket()
	require.NotEmpty(t, buckets)
	assert.Equal(t, uint64(0), buckets[0].GetCumulativeCount())
	assert.Equal(t, uint64(1), buckets[1].GetCumulativeCount())
}

func TestRegisterTwiceFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewParserMetrics(registry)
	require.NoError(t, err)

	_, err = NewParserMetrics(registry)
	assert.Error(t, err)
}

func TestSkipReasonLabels(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewParserMetrics(registry)
	require.NoError(t, err)
	m.RecordSkip(SkipUnmatchedBuilding)

	family := gatherFamily(t, registry, "fireinspect_files_skipped_total")
	require.Len(t, family.GetMetric(), 1)
	labels := family.GetMetric()[0].GetLabel()
	require.Len(t, labels, 1)
	assert.Equal(t, "reason", labels[0].GetName())
	assert.Equal(t, SkipUnmatchedBuilding, labels[0].GetValue())
	assert.InDelta(t, 1, family.GetMetric()[0].GetCounter().GetValue(), 0)
}
