package httpadapter

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
)

const maxForwardBodyBytes = 8 << 20

// ForwardedRoute is one named tool route relayed to the inference backend.
type ForwardedRoute struct {
	Path        string
	OperationID string
	Summary     string
	Response    string
}

var forwardedRoutes = []ForwardedRoute{
	{Path: "/api/chat", OperationID: "chat", Summary: "Ask a question about the document", Response: "chat"},
	{Path: "/api/questions", OperationID: "questions", Summary: "Generate practice questions", Response: "questions"},
	{Path: "/api/flashcards", OperationID: "flashcards", Summary: "Generate flashcards", Response: "flashcards"},
	{Path: "/api/summarize", OperationID: "summarize", Summary: "Summarize the document", Response: "text"},
	{Path: "/api/keyword", OperationID: "keyword", Summary: "Extract categorized keywords as markdown", Response: "text"},
}

// forward relays the request to the backend at the same path. Upstream
// status and body come back unchanged; only a transport failure is
// replaced with a generic 500.
func (rt *Router) forward(route string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxForwardBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
					return
				}
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable request body"})
				return
			}
			body = raw
		}

		metricsRoute := route
		if metricsRoute == "" {
			metricsRoute = r.URL.Path
		}

		start := time.Now()
		resp, err := rt.backend.Forward(r.Context(), ports.ForwardRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			RawQuery:  r.URL.RawQuery,
			Body:      body,
			RequestID: requestIDFromContext(r.Context()),
		})
		if err != nil {
			rt.recordForward(metricsRoute, 0, start)
			slog.Error("upstream_forward_failed",
				"request_id", requestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			writeError(w, err)
			return
		}
		rt.recordForward(metricsRoute, resp.StatusCode, start)

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(resp.Body)
	})
}

func (rt *Router) recordForward(route string, status int, start time.Time) {
	if rt.opts.Metrics == nil {
		return
	}
	rt.opts.Metrics.RecordForward(rt.opts.Service, route, status, time.Since(start))
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	writeJSON(w, status, map[string]string{"error": publicErrorMessage(err)})
}

// publicErrorMessage hides wrapped causes except for validation failures;
// they may carry file paths or upstream addresses.
func publicErrorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrTransport):
		return domain.ErrTransport.Error()
	case domain.IsKind(err, domain.ErrValidation):
		return err.Error()
	case domain.IsKind(err, domain.ErrStorage):
		return "storage failure"
	default:
		return "internal error"
	}
}
