package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

const (
	GreetingMessage      = "Hello! Upload a document to start chatting."
	NoResponseMessage    = "No response received."
	ChatFailureMessage   = "Sorry, there was an error processing your request."
	welcomeMessageFormat = "File %q uploaded successfully! Ask me anything about it."
)

type chatGateway interface {
	Chat(ctx context.Context, filename, message string) (*domain.ChatReply, error)
}

// ChatAssembler owns the chat transcript stored in the artifact cache.
// Messages are only ever appended; a document change replaces the whole
// transcript with a welcome message.
type ChatAssembler struct {
	mu      sync.Mutex
	busy    bool
	cache   *CacheService
	docs    *DocumentRegistry
	gateway chatGateway
}

func NewChatAssembler(cache *CacheService, docs *DocumentRegistry, gateway chatGateway) *ChatAssembler {
	return &ChatAssembler{
		cache:   cache,
		docs:    docs,
		gateway: gateway,
	}
}

func WelcomeMessage(doc domain.ActiveDocument) string {
	return fmt.Sprintf(welcomeMessageFormat, doc.Identifier)
}

func (a *ChatAssembler) OnDocumentChange(doc domain.ActiveDocument) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_ = a.cache.Put(domain.ArtifactChatMessages, domain.ChatTranscript{
		{Role: domain.RoleAssistant, Content: WelcomeMessage(doc)},
	})
}

// OnUserMessage appends the user message before the gateway call resolves,
// then appends either the reply or a fallback message. The returned error is
// informational; the transcript already carries the visible outcome.
// Only one message may be outstanding; a second one gets ErrToolBusy and
// leaves the transcript untouched.
func (a *ChatAssembler) OnUserMessage(ctx context.Context, text string) (domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, domain.WrapError(domain.ErrValidation, "chat", errors.New("message is empty"))
	}
	doc, ok := a.docs.Current()
	if !ok {
		return domain.ChatMessage{}, domain.WrapError(domain.ErrNoActiveDocument, "chat", errors.New("upload or select a document first"))
	}

	release, err := a.acquire()
	if err != nil {
		return domain.ChatMessage{}, err
	}
	defer release()

	a.append(domain.ChatMessage{Role: domain.RoleUser, Content: text})

	reply, err := a.gateway.Chat(ctx, doc.Identifier, text)
	if err != nil {
		slog.Warn("chat_request_failed", "filename", doc.Identifier, "error", err)
		msg := domain.ChatMessage{Role: domain.RoleAssistant, Content: ChatFailureMessage}
		a.append(msg)
		return msg, err
	}

	content := reply.Response
	if content == "" {
		content = NoResponseMessage
	}
	sources := reply.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	msg := domain.ChatMessage{Role: domain.RoleAssistant, Content: content, Sources: sources}
	a.append(msg)
	return msg, nil
}

func (a *ChatAssembler) acquire() (func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy {
		return nil, domain.WrapError(domain.ErrToolBusy, string(domain.ArtifactChatMessages), errors.New("wait for the pending reply"))
	}
	a.busy = true
	return func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}, nil
}

func (a *ChatAssembler) Transcript() domain.ChatTranscript {
	return a.cache.Transcript()
}

func (a *ChatAssembler) append(msg domain.ChatMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	transcript := a.cache.Transcript()
	transcript = append(transcript, msg)
	_ = a.cache.Put(domain.ArtifactChatMessages, transcript)
}
