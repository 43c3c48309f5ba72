package usecase

import (
	"fmt"
	"slices"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
)

// CacheService memoizes each tool's latest artifact for the client session.
// Writes replace; nothing is invalidated when the active document changes
// except the chat transcript, which ChatAssembler resets itself.
type CacheService struct {
	store ports.ArtifactStore
}

func NewCacheService(store ports.ArtifactStore) *CacheService {
	c := &CacheService{store: store}
	c.ClearAll()
	return c
}

// Get returns the artifact stored under key. The chat transcript is always
// present; it is empty until something is appended.
func (c *CacheService) Get(key domain.ArtifactKey) (domain.Artifact, bool) {
	raw, ok := c.store.Get(string(key))
	if !ok {
		if key == domain.ArtifactChatMessages {
			return domain.ChatTranscript{}, true
		}
		return nil, false
	}
	artifact, ok := raw.(domain.Artifact)
	if !ok {
		return nil, false
	}
	return cloneArtifact(artifact), true
}

func (c *CacheService) Put(key domain.ArtifactKey, value domain.Artifact) error {
	if value == nil {
		return domain.WrapError(domain.ErrValidation, "put artifact", fmt.Errorf("nil value for %s", key))
	}
	if value.ArtifactKey() != key {
		return domain.WrapError(domain.ErrValidation, "put artifact", fmt.Errorf("%s value stored under %s", value.ArtifactKey(), key))
	}
	c.store.Set(string(key), cloneArtifact(value))
	return nil
}

// ClearAll resets every key to its empty default.
func (c *CacheService) ClearAll() {
	for _, key := range domain.ArtifactKeys {
		if key == domain.ArtifactChatMessages {
			c.store.Set(string(key), domain.ChatTranscript{})
			continue
		}
		c.store.Delete(string(key))
	}
}

func (c *CacheService) Transcript() domain.ChatTranscript {
	artifact, _ := c.Get(domain.ArtifactChatMessages)
	transcript, _ := artifact.(domain.ChatTranscript)
	return transcript
}

func (c *CacheService) Questions() (domain.QuestionSet, bool) {
	artifact, ok := c.Get(domain.ArtifactQuestions)
	if !ok {
		return nil, false
	}
	questions, ok := artifact.(domain.QuestionSet)
	return questions, ok
}

func (c *CacheService) Flashcards() (domain.FlashcardSet, bool) {
	artifact, ok := c.Get(domain.ArtifactFlashcards)
	if !ok {
		return nil, false
	}
	cards, ok := artifact.(domain.FlashcardSet)
	return cards, ok
}

func (c *CacheService) Summary() (domain.Summary, bool) {
	artifact, ok := c.Get(domain.ArtifactSummary)
	if !ok {
		return "", false
	}
	summary, ok := artifact.(domain.Summary)
	return summary, ok
}

// Keywords returns the cached keyword text with its categories re-derived.
func (c *CacheService) Keywords() (KeywordView, bool) {
	artifact, ok := c.Get(domain.ArtifactKeywords)
	if !ok {
		return KeywordView{}, false
	}
	text, ok := artifact.(domain.KeywordText)
	if !ok {
		return KeywordView{}, false
	}
	return NewKeywordView(text), true
}

func cloneArtifact(artifact domain.Artifact) domain.Artifact {
	switch v := artifact.(type) {
	case domain.ChatTranscript:
		out := make(domain.ChatTranscript, len(v))
		for i, msg := range v {
			msg.Sources = slices.Clone(msg.Sources)
			out[i] = msg
		}
		return out
	case domain.QuestionSet:
		return slices.Clone(v)
	case domain.FlashcardSet:
		return slices.Clone(v)
	default:
		return artifact
	}
}
