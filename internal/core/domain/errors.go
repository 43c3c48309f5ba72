package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrStorage          = errors.New("storage failure")
	ErrUpstream         = errors.New("upstream error")
	ErrTransport        = errors.New("service unavailable")
	ErrMalformedState   = errors.New("malformed persisted state")
	ErrToolBusy         = errors.New("tool request already in flight")
	ErrNoActiveDocument = errors.New("no active document")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// UpstreamError is an HTTP error response returned by the inference backend,
// kept verbatim so it can be replayed to the caller.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return "upstream error"
	}
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, truncate(string(e.Body), 256))
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
