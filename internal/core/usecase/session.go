package usecase

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
)

// Credentials is the single accepted login pair.
type Credentials struct {
	Username    string
	Password    string
	DisplayName string
}

type remoteCleaner interface {
	Cleanup(ctx context.Context) error
}

type artifactResetter interface {
	ClearAll()
}

type SessionService struct {
	slots   ports.SlotStore
	slotKey string
	creds   Credentials
	cleaner remoteCleaner
	cache   artifactResetter

	mu      sync.RWMutex
	session domain.Session
}

func NewSessionService(
	slots ports.SlotStore,
	slotKey string,
	creds Credentials,
	cleaner remoteCleaner,
	cache artifactResetter,
) *SessionService {
	if slotKey == "" {
		slotKey = "user"
	}
	return &SessionService{
		slots:   slots,
		slotKey: slotKey,
		creds:   creds,
		cleaner: cleaner,
		cache:   cache,
	}
}

// Login reports whether the pair matched. A mismatch leaves state untouched.
func (s *SessionService) Login(ctx context.Context, name, secret string) bool {
	if !matches(name, s.creds.Username) || !matches(secret, s.creds.Password) {
		return false
	}

	identity := domain.Identity{Name: s.creds.DisplayName, LoginName: s.creds.Username}
	s.mu.Lock()
	s.session = domain.Session{Identity: &identity, Authenticated: true}
	s.mu.Unlock()

	raw, err := json.Marshal(identity)
	if err == nil {
		err = s.slots.Set(ctx, s.slotKey, string(raw))
	}
	if err != nil {
		slog.Warn("session_persist_failed", "slot", s.slotKey, "error", err)
	}
	return true
}

// Restore loads the persisted identity. A malformed value is discarded and
// the session starts unauthenticated.
func (s *SessionService) Restore(ctx context.Context) domain.Session {
	raw, ok, err := s.slots.Get(ctx, s.slotKey)
	if err != nil {
		slog.Warn("session_restore_failed", "slot", s.slotKey, "error", err)
		return s.Current()
	}
	if !ok {
		return s.Current()
	}

	identity, err := decodeIdentity(raw)
	if err != nil {
		slog.Warn("session_state_discarded", "slot", s.slotKey, "error", err)
		if err := s.slots.Delete(ctx, s.slotKey); err != nil {
			slog.Warn("session_slot_delete_failed", "slot", s.slotKey, "error", err)
		}
		s.mu.Lock()
		s.session = domain.Session{}
		s.mu.Unlock()
		return domain.Session{}
	}

	s.mu.Lock()
	s.session = domain.Session{Identity: &identity, Authenticated: true}
	s.mu.Unlock()
	return s.Current()
}

// Logout attempts the remote cleanup once, then always clears the artifact
// cache, the in-memory session and the persisted slot. Cleanup failures are
// logged and swallowed.
func (s *SessionService) Logout(ctx context.Context) {
	if s.cleaner != nil {
		if err := s.cleaner.Cleanup(ctx); err != nil {
			slog.Warn("session_cleanup_failed", "error", err)
		}
	}
	if s.cache != nil {
		s.cache.ClearAll()
	}

	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	if err := s.slots.Delete(ctx, s.slotKey); err != nil {
		slog.Warn("session_slot_delete_failed", "slot", s.slotKey, "error", err)
	}
}

func (s *SessionService) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	if out.Identity != nil {
		identity := *out.Identity
		out.Identity = &identity
	}
	return out
}

func decodeIdentity(raw string) (domain.Identity, error) {
	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return domain.Identity{}, domain.WrapError(domain.ErrMalformedState, "decode identity", err)
	}
	if strings.TrimSpace(identity.LoginName) == "" {
		return domain.Identity{}, domain.WrapError(domain.ErrMalformedState, "decode identity", errors.New("username is missing"))
	}
	return identity, nil
}

func matches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
