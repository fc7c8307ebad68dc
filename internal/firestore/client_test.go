package firestore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welling-fm/fireinspect/internal/building"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/observability/metrics"
)

const (
	testBase    = "https://firestore.test/v1"
	testProject = "fire-inspection-test"
	testKey     = "test-key"

	buildingsURL = `=~^https://firestore\.test/v1/projects/fire-inspection-test/databases/[^/]*default[^/]*/documents/apps/welling-fm/buildings`
	championURL  = `=~^https://firestore\.test/v1/projects/fire-inspection-test/databases/[^/]*default[^/]*/documents/apps/welling-fm/buildings/b1`
)

func newTestClient(t *testing.T, mt *httpmock.MockTransport, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL:     testBase,
		Project:     testProject,
		APIKey:      testKey,
		HTTPClient:  &http.Client{Transport: mt},
		Timeout:     5 * time.Second,
		PageSize:    2,
		MaxAttempts: 1,
		Logger:      logger.NewSlogLogger(io.Discard, logger.LogLevelDebug),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func doc(id, name string) Document {
	return Document{
		Name: "projects/" + testProject + "/databases/(default)/documents/apps/welling-fm/buildings/" + id,
		Fields: map[string]Value{
			"name": {"stringValue": name},
			"year": {"stringValue": "2025"},
		},
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestListDocumentsFollowsPageTokens(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	var tokens []string
	mt.RegisterResponder(http.MethodGet, buildingsURL, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		assert.Equal(t, testKey, q.Get("key"))
		assert.Equal(t, "2", q.Get("pageSize"))
		tokens = append(tokens, q.Get("pageToken"))

		if q.Get("pageToken") == "" {
			return httpmock.NewJsonResponse(http.StatusOK, listResponse{
				Documents:     []Document{doc("b1", "Champion"), doc("b2", "Cardston Temple")},
				NextPageToken: "page-2",
			})
		}
		return httpmock.NewJsonResponse(http.StatusOK, listResponse{
			Documents: []Document{doc("b3", "Alpine Stables Waterton")},
		})
	})

	c := newTestClient(t, mt, nil)
	docs, err := c.ListDocuments(context.Background(), "apps/welling-fm/buildings")
	require.NoError(t, err)

	require.Len(t, docs, 3)
	assert.Equal(t, "b3", docs[2].ID())
	assert.Equal(t, []string{"", "page-2"}, tokens)
}

func TestListDocumentsEmptyCollection(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, buildingsURL, httpmock.NewStringResponder(http.StatusOK, `{}`))

	c := newTestClient(t, mt, nil)
	docs, err := c.ListDocuments(context.Background(), "/apps/welling-fm/buildings/")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestListDocumentsCachesUntilWrite(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, buildingsURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, listResponse{Documents: []Document{doc("b1", "Champion")}}))
	mt.RegisterResponder(http.MethodPatch, championURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, doc("b1", "Champion")))

	c := newTestClient(t, mt, func(cfg *Config) { cfg.CacheTTL = time.Minute })
	ctx := context.Background()

	_, err := c.ListDocuments(ctx, "apps/welling-fm/buildings")
	require.NoError(t, err)
	_, err = c.ListDocuments(ctx, "apps/welling-fm/buildings")
	require.NoError(t, err)
	assert.Equal(t, 1, mt.GetTotalCallCount())

	_, err = c.PatchDocument(ctx, doc("b1", "Champion"))
	require.NoError(t, err)

	_, err = c.ListDocuments(ctx, "apps/welling-fm/buildings")
	require.NoError(t, err)
	assert.Equal(t, 3, mt.GetTotalCallCount())
}

func TestPatchDocumentSendsFieldsOnly(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	var body map[string]any
	mt.RegisterResponder(http.MethodPatch, championURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, testKey, req.URL.Query().Get("key"))
		assert.Empty(t, req.URL.Query().Get("updateMask.fieldPaths"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		return httpmock.NewJsonResponse(http.StatusOK, doc("b1", "Champion"))
	})

	c := newTestClient(t, mt, nil)
	out, err := c.PatchDocument(context.Background(), doc("b1", "Champion"))
	require.NoError(t, err)

	assert.Equal(t, "b1", out.ID())
	assert.NotContains(t, body, "name")
	assert.Contains(t, body, "fields")
}

func TestPatchDocumentRequiresName(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, httpmock.NewMockTransport(), nil)
	_, err := c.PatchDocument(context.Background(), Document{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestResponseErrorCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   errors.ErrorCategory
	}{
		{"not found", http.StatusNotFound, errors.CategoryNotFound},
		{"unauthorized", http.StatusUnauthorized, errors.CategoryConfiguration},
		{"forbidden", http.StatusForbidden, errors.CategoryConfiguration},
		{"bad request", http.StatusBadRequest, errors.CategoryNetwork},
		{"server", http.StatusInternalServerError, errors.CategoryNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mt := httpmock.NewMockTransport()
			mt.RegisterResponder(http.MethodGet, buildingsURL,
				httpmock.NewStringResponder(tt.status, `{"error":{"code":1,"message":"denied by rule","status":"X"}}`))

			c := newTestClient(t, mt, nil)
			_, err := c.ListDocuments(context.Background(), "apps/welling-fm/buildings")
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, tt.want), "got %s", errors.CategoryOf(err))
			assert.Contains(t, err.Error(), "denied by rule")
		})
	}
}

func TestRetriesServerErrors(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, buildingsURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, `{}`).
			Then(httpmock.NewJsonResponderOrPanic(http.StatusOK, listResponse{Documents: []Document{doc("b1", "Champion")}})))

	registry := prometheus.NewRegistry()
	m, err := metrics.NewRemoteMetrics(registry)
	require.NoError(t, err)

	c := newTestClient(t, mt, func(cfg *Config) {
		cfg.MaxAttempts = 2
		cfg.Metrics = m
	})
	docs, err := c.ListDocuments(context.Background(), "apps/welling-fm/buildings")
	require.NoError(t, err)

	assert.Len(t, docs, 1)
	assert.Equal(t, 2, mt.GetTotalCallCount())
	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(metrics.OpList, "503")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(metrics.OpList, "200")), 0)
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, buildingsURL, httpmock.NewStringResponder(http.StatusBadRequest, `{}`))

	c := newTestClient(t, mt, func(cfg *Config) { cfg.MaxAttempts = 3 })
	_, err := c.ListDocuments(context.Background(), "apps/welling-fm/buildings")
	require.Error(t, err)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, buildingsURL, httpmock.NewStringResponder(http.StatusOK, `{}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, mt, nil)
	_, err := c.ListDocuments(ctx, "apps/welling-fm/buildings")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}

func TestBuildingStoreRoundTrip(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, buildingsURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, listResponse{Documents: []Document{doc("b1", "Champion")}}))

	var written Document
	mt.RegisterResponder(http.MethodPatch, championURL, func(req *http.Request) (*http.Response, error) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&written))
		return httpmock.NewJsonResponse(http.StatusOK, written)
	})

	store := NewBuildingStore(newTestClient(t, mt, nil), "welling-fm")
	assert.Equal(t, "apps/welling-fm/buildings", store.Collection())

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b1", records[0].ID)
	assert.Equal(t, "Champion", records[0].Name())
	assert.Equal(t, "2025", records[0].Year())

	rec := records[0].Clone()
	rec.Fields["sections"] = []any{map[string]any{"name": "Notes", "items": []any{}}}
	require.NoError(t, store.WriteRecord(context.Background(), rec))

	fields, err := DecodeFields(written.Fields)
	require.NoError(t, err)
	assert.Equal(t, rec.Fields, fields)
}

func TestBuildingStoreWriteUsesIDWhenPathMissing(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodPatch, championURL, httpmock.NewStringResponder(http.StatusOK, `{}`))

	store := NewBuildingStore(newTestClient(t, mt, nil), "welling-fm")
	rec := building.Record{ID: "b1", Fields: map[string]any{"name": "Champion"}}
	require.NoError(t, store.WriteRecord(context.Background(), rec))
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestTransportErrorHidesAPIKey(t *testing.T) {
	t.Parallel()

	mt := httpmock.NewMockTransport()
	mt.RegisterRegexpResponder(http.MethodGet, regexp.MustCompile(`buildings`),
		httpmock.NewErrorResponder(stderrors.New("connection reset")))

	_, err := newTestClient(t, mt, nil).ListDocuments(context.Background(), BuildingsCollection("welling-fm"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotContains(t, err.Error(), testKey)
}
