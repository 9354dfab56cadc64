package memory

import (
	"context"
	"sync"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.sessions.Store(session.Token, session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	value, ok := s.sessions.Load(token)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session := value.(domain.Session)
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}

var _ ports.SessionStore = (*SessionStore)(nil)
