package ports

//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=mocks

import (
	"context"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
)

// Service is the inbound port for operator sessions.
type Service interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
	// Resolve returns the live session behind token.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}
