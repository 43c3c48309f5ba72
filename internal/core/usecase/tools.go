package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
)

// ToolService runs the generation tools against the active document and
// memoizes successful results. A failed run leaves the previous artifact in
// place. At most one request per tool is in flight; different tools run
// concurrently without coordination, and nothing is cancelled when the
// active document changes.
type ToolService struct {
	gateway ports.ToolGateway
	cache   *CacheService
	docs    *DocumentRegistry

	mu       sync.Mutex
	inFlight map[domain.ArtifactKey]bool
}

func NewToolService(gateway ports.ToolGateway, cache *CacheService, docs *DocumentRegistry) *ToolService {
	return &ToolService{
		gateway:  gateway,
		cache:    cache,
		docs:     docs,
		inFlight: make(map[domain.ArtifactKey]bool),
	}
}

// Upload sends a document to the gateway and makes it the active document.
func (s *ToolService) Upload(ctx context.Context, name string, body io.Reader) (domain.ActiveDocument, error) {
	doc, err := s.gateway.Upload(ctx, name, body)
	if err != nil {
		return domain.ActiveDocument{}, err
	}
	if err := s.docs.Select(*doc); err != nil {
		return domain.ActiveDocument{}, err
	}
	return *doc, nil
}

func (s *ToolService) GenerateQuestions(ctx context.Context) (domain.QuestionSet, error) {
	out, err := run(ctx, s, domain.ArtifactQuestions, s.gateway.Questions)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ToolService) GenerateFlashcards(ctx context.Context) (domain.FlashcardSet, error) {
	out, err := run(ctx, s, domain.ArtifactFlashcards, s.gateway.Flashcards)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ToolService) GenerateSummary(ctx context.Context) (domain.Summary, error) {
	return run(ctx, s, domain.ArtifactSummary, s.gateway.Summarize)
}

func (s *ToolService) GenerateKeywords(ctx context.Context) (KeywordView, error) {
	text, err := run(ctx, s, domain.ArtifactKeywords, s.gateway.Keywords)
	if err != nil {
		return KeywordView{}, err
	}
	return NewKeywordView(text), nil
}

func run[T domain.Artifact](
	ctx context.Context,
	s *ToolService,
	key domain.ArtifactKey,
	call func(context.Context, string) (T, error),
) (T, error) {
	var zero T

	doc, ok := s.docs.Current()
	if !ok {
		return zero, domain.WrapError(domain.ErrNoActiveDocument, string(key), errors.New("upload or select a document first"))
	}

	release, err := s.acquire(key)
	if err != nil {
		return zero, err
	}
	defer release()

	result, err := call(ctx, doc.Identifier)
	if err != nil {
		slog.Warn("tool_request_failed", "tool", string(key), "filename", doc.Identifier, "error", err)
		return zero, err
	}
	if err := s.cache.Put(key, result); err != nil {
		return zero, err
	}
	return result, nil
}

func (s *ToolService) acquire(key domain.ArtifactKey) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return nil, domain.WrapError(domain.ErrToolBusy, string(key), errors.New("wait for the running request"))
	}
	s.inFlight[key] = true
	return func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}, nil
}
