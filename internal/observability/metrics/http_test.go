package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizePathBoundsCardinality(t *testing.T) {
	cases := map[string]string{
		"/api/chat":                 "/api/chat",
		"/api/download_summary_pdf": "/api/{forwarded}",
		"/api/health":               "/api/{forwarded}",
		"/favicon.ico":              "other",
		"/healthz":                  "/healthz",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMetricsEndpointExposesForwardAndUploadSeries(t *testing.T) {
	m := NewHTTPServerMetrics("test")
	m.RecordForward("test", "/api/summarize", 0, 10*time.Millisecond)
	m.RecordForward("test", "/api/summarize", http.StatusNotFound, 10*time.Millisecond)
	m.RecordUpload("test", "stored", 2048)
	m.RecordCleanup("test", 3)

	handler := m.Middleware("test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`dsg_upstream_forward_total{outcome="transport_error",route="/api/summarize",service="test"} 1`,
		`dsg_upstream_forward_total{outcome="4xx",route="/api/summarize",service="test"} 1`,
		`dsg_uploads_total{service="test",status="stored"} 1`,
		`dsg_uploads_cleanup_deleted_total{service="test"} 3`,
		`dsg_http_requests_total{method="POST",path="/api/chat",service="test",status="418"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
