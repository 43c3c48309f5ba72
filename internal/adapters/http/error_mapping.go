package httpadapter

import (
	"net/http"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

// mapErrorToHTTPStatus maps local failures only. Upstream error responses are
// relayed with their own status and never reach this function.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTransport):
		return http.StatusInternalServerError
	case domain.IsKind(err, domain.ErrStorage):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
