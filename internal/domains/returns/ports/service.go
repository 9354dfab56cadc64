package ports

//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=mocks

import (
	"context"

	returntypes "github.com/laboquimica/kalium-review/internal/domains/returns/application/types"
)

// Service is the inbound port used by transports. Mutations return the view
// snapshot even on failure so callers can render the inline error.
type Service interface {
	Open(ctx context.Context, ref returntypes.ViewRef) (*returntypes.ReviewView, error)
	Reload(ctx context.Context, ref returntypes.ViewRef) (*returntypes.ReviewView, error)
	ReviewItem(ctx context.Context, input returntypes.ReviewItemInput) (*returntypes.ReviewView, error)
	Approve(ctx context.Context, input returntypes.ApproveInput) (*returntypes.ReviewView, error)
	Reject(ctx context.Context, input returntypes.RejectInput) (*returntypes.ReviewView, error)
	Close(ctx context.Context, ref returntypes.ViewRef) error
}
