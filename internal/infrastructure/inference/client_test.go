package inference

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
)

func TestForwardRelaysRequestAndResponse(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotBody, gotType, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-Id")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"summary":"S"}`))
	}))
	defer server.Close()

	client := New(server.URL + "/")
	resp, err := client.Forward(context.Background(), ports.ForwardRequest{
		Method:    http.MethodPost,
		Path:      "/api/summarize",
		RawQuery:  "lang=en",
		Body:      []byte(`{"filename":"a.pdf"}`),
		RequestID: "req-7",
	})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/summarize" || gotQuery != "lang=en" {
		t.Fatalf("unexpected upstream request %s %s?%s", gotMethod, gotPath, gotQuery)
	}
	if gotBody != `{"filename":"a.pdf"}` || gotType != "application/json" {
		t.Fatalf("unexpected upstream body %q (%s)", gotBody, gotType)
	}
	if gotRequestID != "req-7" {
		t.Fatalf("expected request id header, got %q", gotRequestID)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != `{"summary":"S"}` {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, resp.Body)
	}
}

func TestForwardReturnsErrorStatusesAsResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"File not found"}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Forward(context.Background(), ports.ForwardRequest{Path: "/api/questions", Body: []byte(`{}`)})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || string(resp.Body) != `{"error":"File not found"}` {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, resp.Body)
	}
}

func TestForwardReportsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url).Forward(context.Background(), ports.ForwardRequest{Path: "/api/chat", Body: []byte(`{}`)})
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
