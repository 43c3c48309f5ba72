package ports

import (
	"context"
	"io"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

// UploadStore is the inbound contract for the server-side upload registry.
type UploadStore interface {
	Store(ctx context.Context, suppliedName string, body io.Reader) (*domain.UploadedFile, error)
	Delete(ctx context.Context, identifier string) error
	DeleteAll(ctx context.Context) (int, error)
}
