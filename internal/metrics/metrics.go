// Package metrics exposes Prometheus instruments for document runs and the
// HTTP server. All recording methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "checks"

// Metrics holds a private registry and the instruments registered on it.
type Metrics struct {
	registry *prometheus.Registry

	documentsTotal   *prometheus.CounterVec
	documentDuration *prometheus.HistogramVec
	fieldsPresent    *prometheus.HistogramVec
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	decisionsTotal   *prometheus.CounterVec
	unknownFiles     prometheus.Counter

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
}

// New creates a Metrics with a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Processed documents by kind and status.",
		},
		[]string{"kind", "status"},
	)
	documentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "document_duration_seconds",
			Help:      "Text and field extraction duration per document.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)
	fieldsPresent := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "fields_present",
			Help:      "Fields with a value per extracted document.",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 12, 16, 24},
		},
		[]string{"kind"},
	)
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Completed project runs by status.",
		},
		[]string{"status"},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Project run duration in seconds.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arbiter",
			Name:      "decisions_total",
			Help:      "Report fields by outcome.",
		},
		[]string{"outcome"},
	)
	unknownFiles := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "unknown_files_total",
			Help:      "Files skipped because no kind matched.",
		},
	)
	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		},
	)

	registry.MustRegister(
		documentsTotal,
		documentDuration,
		fieldsPresent,
		runsTotal,
		runDuration,
		decisionsTotal,
		unknownFiles,
		requestTotal,
		requestDuration,
		requestInFlight,
	)

	return &Metrics{
		registry:         registry,
		documentsTotal:   documentsTotal,
		documentDuration: documentDuration,
		fieldsPresent:    fieldsPresent,
		runsTotal:        runsTotal,
		runDuration:      runDuration,
		decisionsTotal:   decisionsTotal,
		unknownFiles:     unknownFiles,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDocument records one processed document. failed marks an error
// marker; present is the number of fields that carried a value.
func (m *Metrics) ObserveDocument(kind string, duration time.Duration, present int, failed bool) {
	if m == nil {
		return
	}
	status := "success"
	if failed {
		status = "error"
	}
	m.documentsTotal.WithLabelValues(kind, status).Inc()
	m.documentDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if !failed {
		m.fieldsPresent.WithLabelValues(kind).Observe(float64(present))
	}
}

// ObserveRun records a finished project run.
func (m *Metrics) ObserveRun(duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// ObserveDecisions records how many report fields were decided out of total.
func (m *Metrics) ObserveDecisions(decided, total int) {
	if m == nil {
		return
	}
	if decided > 0 {
		m.decisionsTotal.WithLabelValues("decided").Add(float64(decided))
	}
	if total > decided {
		m.decisionsTotal.WithLabelValues("empty").Add(float64(total - decided))
	}
}

// AddUnknownFiles counts files the classifier skipped.
func (m *Metrics) AddUnknownFiles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.unknownFiles.Add(float64(n))
}

// Middleware instruments every request passing through next.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := r.URL.Path
		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
