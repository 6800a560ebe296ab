package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDocument(t *testing.T) {
	m := New()

	m.ObserveDocument("contract", 2*time.Second, 12, false)
	m.ObserveDocument("contract", time.Second, 0, true)
	m.ObserveDocument("invoice", time.Second, 4, false)

	assert.InDelta(t, 1, testutil.ToFloat64(m.documentsTotal.WithLabelValues("contract", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.documentsTotal.WithLabelValues("contract", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.documentsTotal.WithLabelValues("invoice", "success")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.fieldsPresent))
}

func TestObserveRunAndDecisions(t *testing.T) {
	m := New()

	m.ObserveRun(time.Minute, nil)
	m.ObserveRun(time.Second, errors.New("boom"))
	m.ObserveDecisions(30, 42)
	m.AddUnknownFiles(3)
	m.AddUnknownFiles(0)

	assert.InDelta(t, 1, testutil.ToFloat64(m.runsTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runsTotal.WithLabelValues("error")), 0)
	assert.InDelta(t, 30, testutil.ToFloat64(m.decisionsTotal.WithLabelValues("decided")), 0)
	assert.InDelta(t, 12, testutil.ToFloat64(m.decisionsTotal.WithLabelValues("empty")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.unknownFiles), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDocument("contract", time.Second, 1, false)
		m.ObserveRun(time.Second, nil)
		m.ObserveDecisions(1, 2)
		m.AddUnknownFiles(1)
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.InDelta(t, 1, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/health", "418")), 0)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "checks_http_requests_total"))
}
