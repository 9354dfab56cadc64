package ports

import (
	"context"
	"errors"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
)

// ErrInvalidCredentials is returned when the backend refuses the login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator checks credentials against the system of record.
type Authenticator interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Operator, error)
}
