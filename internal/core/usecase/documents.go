package usecase

import (
	"errors"
	"strings"
	"sync"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

// DocumentRegistry holds the single active document. Replacing it is the
// only transition; every Select notifies listeners, even for the same name.
type DocumentRegistry struct {
	mu        sync.RWMutex
	current   *domain.ActiveDocument
	listeners []func(domain.ActiveDocument)
}

func NewDocumentRegistry() *DocumentRegistry {
	return &DocumentRegistry{}
}

func (r *DocumentRegistry) OnChange(fn func(domain.ActiveDocument)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *DocumentRegistry) Select(doc domain.ActiveDocument) error {
	if strings.TrimSpace(doc.Identifier) == "" {
		return domain.WrapError(domain.ErrValidation, "select document", errors.New("identifier is required"))
	}

	r.mu.Lock()
	selected := doc
	r.current = &selected
	listeners := append([]func(domain.ActiveDocument){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(doc)
	}
	return nil
}

func (r *DocumentRegistry) Current() (domain.ActiveDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return domain.ActiveDocument{}, false
	}
	return *r.current, true
}
