package application

import (
	"errors"
	"fmt"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

var (
	// ErrInvalidInput signals malformed credentials.
	ErrInvalidInput = errors.New("invalid login input")
	// ErrAuthentication wraps refused logins.
	ErrAuthentication = errors.New("authentication failed")
	// ErrUnauthenticated is returned for missing, unknown or expired tokens.
	ErrUnauthenticated = errors.New("operator is not authenticated")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyEmail) ||
		errors.Is(err, domain.ErrEmptyPassword) ||
		errors.Is(err, domain.ErrInvalidEmail) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrInvalidCredentials) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return err
}
