package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// SessionStore caches the session in memory and writes it through to a
// device-local key-value store under the keys "token" and "user".
type SessionStore struct {
	mu      sync.RWMutex
	store   ports.KeyValueStore
	logger  ports.LoggerPort
	session domain.Session
}

func NewSessionStore(store ports.KeyValueStore, logger ports.LoggerPort) *SessionStore {
	return &SessionStore{
		store:  store,
		logger: logger,
	}
}

// Load reads the persisted session. A missing token, a missing or corrupt
// user, or a storage failure all yield the logged-out session.
func (s *SessionStore) Load(ctx context.Context) domain.Session {
	session := s.read(ctx)

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	return session
}

func (s *SessionStore) read(ctx context.Context) domain.Session {
	token, err := s.store.Get(ctx, tokenKey)
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			s.logger.Warn("Failed to read persisted token", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return domain.Session{}
	}

	rawUser, err := s.store.Get(ctx, userKey)
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			s.logger.Warn("Failed to read persisted user", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return domain.Session{}
	}

	var user *domain.User
	if err := json.Unmarshal(rawUser, &user); err != nil || user == nil {
		fields := map[string]interface{}{}
		if err != nil {
			fields["error"] = err.Error()
		}
		s.logger.Warn("Ignoring corrupt persisted user", fields)
		return domain.Session{}
	}

	if len(token) == 0 {
		return domain.Session{}
	}
	return domain.Session{Token: string(token), User: user}
}

func (s *SessionStore) Save(ctx context.Context, token string, user domain.User) error {
	const op = "SessionStore.Save"

	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(ctx, tokenKey, []byte(token)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(ctx, userKey, userData); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.session = domain.Session{Token: token, User: &user}
	s.mu.Unlock()
	return nil
}

// Clear drops the cached session first, so a storage failure still logs
// the process out.
func (s *SessionStore) Clear(ctx context.Context) error {
	const op = "SessionStore.Clear"

	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	tokenErr := s.store.Delete(ctx, tokenKey)
	userErr := s.store.Delete(ctx, userKey)
	if err := errors.Join(tokenErr, userErr); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Current returns a copy of the cached session without touching storage.
func (s *SessionStore) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session := s.session
	if session.User != nil {
		user := *session.User
		session.User = &user
	}
	return session
}

var _ ports.SessionStore = (*SessionStore)(nil)
