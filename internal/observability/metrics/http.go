package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	forwardTotal    *prometheus.CounterVec
	forwardDuration *prometheus.HistogramVec
	uploadsTotal    *prometheus.CounterVec
	uploadBytes     *prometheus.HistogramVec
	cleanupDeleted  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dsg",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dsg",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dsg",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	forwardTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dsg",
			Subsystem: "upstream",
			Name:      "forward_total",
			Help:      "Requests forwarded to the inference backend by route and outcome.",
		},
		[]string{"service", "route", "outcome"},
	)
	forwardDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dsg",
			Subsystem: "upstream",
			Name:      "forward_duration_seconds",
			Help:      "Inference backend round-trip duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "route"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dsg",
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Upload attempts by status.",
		},
		[]string{"service", "status"},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dsg",
			Subsystem: "uploads",
			Name:      "size_bytes",
			Help:      "Size of stored uploads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"service"},
	)
	cleanupDeleted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dsg",
			Subsystem: "uploads",
			Name:      "cleanup_deleted_total",
			Help:      "Uploads removed by the cleanup route.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		forwardTotal,
		forwardDuration,
		uploadsTotal,
		uploadBytes,
		cleanupDeleted,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		forwardTotal:    forwardTotal,
		forwardDuration: forwardDuration,
		uploadsTotal:    uploadsTotal,
		uploadBytes:     uploadBytes,
		cleanupDeleted:  cleanupDeleted,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

var knownPaths = map[string]struct{}{
	"/api/upload":     {},
	"/api/cleanup":    {},
	"/api/chat":       {},
	"/api/questions":  {},
	"/api/flashcards": {},
	"/api/summarize":  {},
	"/api/keyword":    {},
	"/healthz":        {},
	"/metrics":        {},
	"/openapi.json":   {},
}

// normalizePath keeps label cardinality bounded: catch-all forwards collapse
// into one series.
func normalizePath(path string) string {
	if _, ok := knownPaths[path]; ok {
		return path
	}
	if strings.HasPrefix(path, "/api/") {
		return "/api/{forwarded}"
	}
	return "other"
}

// RecordForward tracks one upstream round trip. status is 0 when no response
// was received.
func (m *HTTPServerMetrics) RecordForward(service, route string, status int, duration time.Duration) {
	outcome := "transport_error"
	switch {
	case status >= 500:
		outcome = "5xx"
	case status >= 400:
		outcome = "4xx"
	case status > 0:
		outcome = "ok"
	}
	route = normalizePath(route)
	m.forwardTotal.WithLabelValues(service, route, outcome).Inc()
	m.forwardDuration.WithLabelValues(service, route).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordUpload(service, status string, sizeBytes int64) {
	if status == "" {
		status = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, status).Inc()
	if sizeBytes > 0 {
		m.uploadBytes.WithLabelValues(service).Observe(float64(sizeBytes))
	}
}

func (m *HTTPServerMetrics) RecordCleanup(service string, deleted int) {
	if deleted <= 0 {
		return
	}
	m.cleanupDeleted.WithLabelValues(service).Add(float64(deleted))
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
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
