package ports

import (
	"context"
	"errors"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists operator sessions keyed by token.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}
