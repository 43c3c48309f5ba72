package gatewayclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/resilience"
)

// countsAsGatewayFailure trips the breaker on unreachable gateways and 5xx
// replies. 4xx replies and cancellations are the caller's problem.
func countsAsGatewayFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode >= http.StatusInternalServerError
	}
	return domain.IsKind(err, domain.ErrTransport)
}

// wrapCircuitOpen reports an open breaker as a transport fault so callers
// see the same "service unavailable" outcome as a refused connection.
func wrapCircuitOpen(operation string, err error) error {
	if err == nil {
		return nil
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTransport, operation, err)
	}
	return err
}
