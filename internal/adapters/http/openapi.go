package httpadapter

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	openAPIOnce sync.Once
	openAPIDoc  *openapi3.T
)

func (rt *Router) openAPI(w http.ResponseWriter, _ *http.Request) {
	openAPIOnce.Do(func() {
		openAPIDoc = BuildOpenAPI()
	})
	writeJSON(w, http.StatusOK, openAPIDoc)
}

// BuildOpenAPI describes the gateway surface. Forwarded routes document the
// usual backend payloads, but the gateway relays whatever the backend sends.
func BuildOpenAPI() *openapi3.T {
	paths := openapi3.NewPaths()

	uploadForm := openapi3.NewObjectSchema().
		WithProperty("file", openapi3.NewStringSchema().WithFormat("binary")).
		WithRequired([]string{"file"})
	upload := newOperation("upload", "Store a document under its supplied file name", uploadResponseSchema())
	upload.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithFormDataSchema(uploadForm)}
	upload.AddResponse(http.StatusBadRequest, errorResponse("No file uploaded or invalid file name"))
	paths.Set("/api/upload", &openapi3.PathItem{Post: upload})

	cleanup := newOperation("cleanup", "Delete every stored upload", openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema()).
		WithProperty("deleted", openapi3.NewIntegerSchema()))
	paths.Set("/api/cleanup", &openapi3.PathItem{Post: cleanup})

	for _, route := range forwardedRoutes {
		op := newOperation(route.OperationID, route.Summary, forwardedResponseSchema(route.Response))
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(forwardedRequestSchema(route.OperationID))}
		op.AddResponse(0, openapi3.NewResponse().WithDescription("Upstream error status and body, relayed unchanged"))
		paths.Set(route.Path, &openapi3.PathItem{Post: op})
	}

	paths.Set("/api/{route}", catchAllPathItem())

	health := newOperation("healthz", "Gateway liveness", openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema()))
	paths.Set("/healthz", &openapi3.PathItem{Get: health})

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Document study gateway",
			Description: "Upload registry and pass-through gateway to the document inference backend.",
			Version:     "1.0.0",
		},
		Paths: paths,
	}
}

// catchAllPathItem documents the /api/ fallback, which relays every method
// unchanged. Methods other than POST on the named routes land here as well.
func catchAllPathItem() *openapi3.PathItem {
	item := &openapi3.PathItem{
		Description: "Any method on any other /api route is relayed to the inference backend with its body and query string.",
	}
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		op := newOperation("forward"+method, "Relay "+method+" to the inference backend", openapi3.NewObjectSchema())
		op.AddParameter(openapi3.NewPathParameter("route").WithSchema(openapi3.NewStringSchema()))
		op.AddResponse(0, openapi3.NewResponse().WithDescription("Upstream status and body, relayed unchanged"))
		item.SetOperation(method, op)
	}
	return item
}

func newOperation(id, summary string, ok *openapi3.Schema) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("OK").WithJSONSchema(ok)}),
		openapi3.WithStatus(http.StatusInternalServerError, &openapi3.ResponseRef{Value: errorResponse("Backend unreachable or local failure")}),
	)
	return op
}

func errorResponse(description string) *openapi3.Response {
	return openapi3.NewResponse().
		WithDescription(description).
		WithJSONSchema(openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema()))
}

func uploadResponseSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema()).
		WithProperty("filename", openapi3.NewStringSchema()).
		WithProperty("path", openapi3.NewStringSchema())
}

func forwardedRequestSchema(operationID string) *openapi3.Schema {
	schema := openapi3.NewObjectSchema().WithProperty("filename", openapi3.NewStringSchema())
	required := []string{"filename"}
	if operationID == "chat" {
		schema = schema.WithProperty("message", openapi3.NewStringSchema())
		required = append(required, "message")
	}
	return schema.WithRequired(required)
}

func forwardedResponseSchema(kind string) *openapi3.Schema {
	switch kind {
	case "chat":
		source := openapi3.NewObjectSchema().
			WithProperty("page", openapi3.NewIntegerSchema()).
			WithProperty("text", openapi3.NewStringSchema())
		return openapi3.NewObjectSchema().
			WithProperty("response", openapi3.NewStringSchema()).
			WithProperty("sources", openapi3.NewArraySchema().WithItems(source))
	case "questions":
		item := openapi3.NewObjectSchema().
			WithProperty("question", openapi3.NewStringSchema()).
			WithProperty("answer", openapi3.NewStringSchema()).
			WithProperty("type", openapi3.NewStringSchema()).
			WithProperty("location", openapi3.NewStringSchema())
		return openapi3.NewObjectSchema().WithProperty("result", openapi3.NewArraySchema().WithItems(item))
	case "flashcards":
		item := openapi3.NewObjectSchema().
			WithProperty("front", openapi3.NewStringSchema()).
			WithProperty("back", openapi3.NewStringSchema()).
			WithProperty("location", openapi3.NewStringSchema())
		return openapi3.NewObjectSchema().WithProperty("result", openapi3.NewArraySchema().WithItems(item))
	default:
		return openapi3.NewObjectSchema().WithProperty("response", openapi3.NewStringSchema())
	}
}
