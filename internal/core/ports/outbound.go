package ports

import (
	"context"
	"io"
	"net/http"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

// ObjectStorage stores uploaded documents on durable storage.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	Locate(key string) string
}

// UploadNotifier announces stored uploads. Implementations may be no-ops.
type UploadNotifier interface {
	PublishUploaded(ctx context.Context, file domain.UploadedFile) error
}

// InferenceBackend forwards one request to the external inference service.
// Any HTTP response, including error statuses, is returned as a response;
// only transport failures produce an error.
type InferenceBackend interface {
	Forward(ctx context.Context, req ForwardRequest) (*ForwardResponse, error)
}

type ForwardRequest struct {
	Method    string
	Path      string
	RawQuery  string
	Body      []byte
	RequestID string
}

type ForwardResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// SlotStore is a durable key-value slot used to persist the session identity.
type SlotStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ArtifactStore is the raw memo table behind the artifact cache.
type ArtifactStore interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// ToolGateway is the client's view of the gateway HTTP surface.
type ToolGateway interface {
	Upload(ctx context.Context, name string, body io.Reader) (*domain.ActiveDocument, error)
	Cleanup(ctx context.Context) error
	Chat(ctx context.Context, filename, message string) (*domain.ChatReply, error)
	Questions(ctx context.Context, filename string) (domain.QuestionSet, error)
	Flashcards(ctx context.Context, filename string) (domain.FlashcardSet, error)
	Summarize(ctx context.Context, filename string) (domain.Summary, error)
	Keywords(ctx context.Context, filename string) (domain.KeywordText, error)
}
