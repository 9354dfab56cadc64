package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Option configures the Service.
type Option func(*Service)

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTokenSource overrides how session tokens are generated.
func WithTokenSource(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

// Service exposes operator session use cases.
type Service struct {
	auth     ports.Authenticator
	sessions ports.SessionStore
	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

func NewService(auth ports.Authenticator, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		auth:     auth,
		sessions: sessions,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Login authenticates against the backend and opens a session.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, mapError(err)
	}
	if s.auth == nil || s.sessions == nil {
		return nil, errors.New("operator sessions not configured")
	}
	operator, err := s.auth.Authenticate(ctx, creds)
	if err != nil {
		return nil, mapError(err)
	}
	session := domain.Session{
		Token:     s.newToken(),
		Operator:  *operator,
		Scopes:    operator.Scopes(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout forgets the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || s.sessions == nil {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Resolve returns the live session behind token. Expired sessions are deleted.
func (s *Service) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	if s.sessions == nil {
		return nil, errors.New("operator sessions not configured")
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, mapError(ports.ErrSessionNotFound)
	}
	return session, nil
}

var _ ports.Service = (*Service)(nil)
