package usecase

import (
	"context"
	"io"
	"sync"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

type mapArtifactStore struct {
	mu     sync.Mutex
	values map[string]any
}

func newMapArtifactStore() *mapArtifactStore {
	return &mapArtifactStore{values: map[string]any{}}
}

func (s *mapArtifactStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *mapArtifactStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *mapArtifactStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

type gatewayFake struct {
	mu sync.Mutex

	uploadDoc  *domain.ActiveDocument
	uploadErr  error
	cleanupErr error
	cleanups   int

	chatReply *domain.ChatReply
	chatErr   error
	chatCalls []string

	questions  domain.QuestionSet
	flashcards domain.FlashcardSet
	summary    domain.Summary
	keywords   domain.KeywordText
	toolErr    error

	// block, when set, holds tool calls until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *gatewayFake) Upload(_ context.Context, name string, body io.Reader) (*domain.ActiveDocument, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if _, err := io.ReadAll(body); err != nil {
		return nil, err
	}
	if f.uploadDoc != nil {
		return f.uploadDoc, nil
	}
	return &domain.ActiveDocument{Identifier: name, StorageLocator: "/uploads/" + name}, nil
}

func (f *gatewayFake) Cleanup(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	return f.cleanupErr
}

func (f *gatewayFake) Chat(_ context.Context, filename, message string) (*domain.ChatReply, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, filename+":"+message)
	f.mu.Unlock()
	f.wait()
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	if f.chatReply != nil {
		return f.chatReply, nil
	}
	return &domain.ChatReply{Response: "echo " + message}, nil
}

func (f *gatewayFake) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *gatewayFake) Questions(context.Context, string) (domain.QuestionSet, error) {
	f.wait()
	return f.questions, f.toolErr
}

func (f *gatewayFake) Flashcards(context.Context, string) (domain.FlashcardSet, error) {
	f.wait()
	return f.flashcards, f.toolErr
}

func (f *gatewayFake) Summarize(context.Context, string) (domain.Summary, error) {
	f.wait()
	return f.summary, f.toolErr
}

func (f *gatewayFake) Keywords(context.Context, string) (domain.KeywordText, error) {
	f.wait()
	return f.keywords, f.toolErr
}
