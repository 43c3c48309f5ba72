package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
	"github.com/kirillkom/doc-study-gateway/internal/observability/metrics"
)

const defaultUploadMaxMemory = 32 << 20

type Options struct {
	Service              string
	UploadMaxMemoryBytes int64
	RateLimitRPS         float64
	RateLimitBurst       int
	MaxInFlight          int
	InFlightWait         time.Duration
	Metrics              *metrics.HTTPServerMetrics
}

type Router struct {
	uploads ports.UploadStore
	backend ports.InferenceBackend
	opts    Options
}

func NewRouter(uploads ports.UploadStore, backend ports.InferenceBackend, opts Options) *Router {
	if opts.Service == "" {
		opts.Service = "doc-study-gateway"
	}
	if opts.UploadMaxMemoryBytes <= 0 {
		opts.UploadMaxMemoryBytes = defaultUploadMaxMemory
	}
	if opts.InFlightWait <= 0 {
		opts.InFlightWait = 100 * time.Millisecond
	}
	return &Router{
		uploads: uploads,
		backend: backend,
		opts:    opts,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/upload", rt.upload)
	api.HandleFunc("POST /api/cleanup", rt.cleanup)
	for _, route := range forwardedRoutes {
		api.Handle("POST "+route.Path, rt.forward(route.Path))
	}
	api.Handle("/api/", rt.forward(""))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.json", rt.openAPI)
	if rt.opts.Metrics != nil {
		mux.Handle("GET /metrics", rt.opts.Metrics.Handler())
	}
	mux.Handle("/api/", rt.trafficControl(api))

	var handler http.Handler = mux
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(rt.opts.Service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) trafficControl(next http.Handler) http.Handler {
	handler := next
	if rt.opts.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.InFlightWait)
	}
	if rt.opts.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	}
	return handler
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
