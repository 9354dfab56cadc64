package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/laboquimica/kalium-review/internal/clients/http/kalium"
	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

// Authenticator logs operators in through the backend's login endpoint.
type Authenticator struct {
	client *kalium.Client
}

func NewAuthenticator(client *kalium.Client) *Authenticator {
	return &Authenticator{client: client}
}

func (a *Authenticator) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Operator, error) {
	if a == nil || a.client == nil {
		return nil, errors.New("kalium authenticator not configured")
	}
	user, err := a.client.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		var apiErr *kalium.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return nil, ports.ErrInvalidCredentials
			}
		}
		return nil, err
	}
	return ToOperator(user), nil
}

// ToOperator maps a backend account to the console operator.
func ToOperator(user *kalium.Usuario) *domain.Operator {
	op := &domain.Operator{
		ID:        user.IDUsuario,
		FirstName: user.Nombre,
		LastName:  user.Apellido,
		Email:     user.Correo,
	}
	if user.Rol != nil {
		op.Role = user.Rol.NombreRol
	}
	return op
}

var _ ports.Authenticator = (*Authenticator)(nil)
