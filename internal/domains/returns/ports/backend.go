package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
)

// ErrNotFound is returned when the backend has no record for the requested id.
var ErrNotFound = errors.New("not found")

// RemoteError carries the status and message of a failed backend call.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.Status)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.Status, e.Message)
}

// Backend is the remote system of record for returns.
type Backend interface {
	GetReturn(ctx context.Context, returnID int64) (*domain.Return, error)
	ListReturnStates(ctx context.Context) ([]domain.StateOption, error)
	ListDeliveryItems(ctx context.Context, deliveryID int64) ([]domain.SupplyItem, error)
	ListDetails(ctx context.Context, returnID int64) ([]domain.DetailLine, error)
	// IsReviewComplete returns the server-computed completeness flag.
	IsReviewComplete(ctx context.Context, returnID int64) (bool, error)
	// SubmitDetail upserts the detail line for (ReturnID, ItemID).
	SubmitDetail(ctx context.Context, line domain.DetailLine) (*domain.DetailLine, error)
	Approve(ctx context.Context, returnID int64) (*domain.Return, error)
	Reject(ctx context.Context, returnID int64, reason string) (*domain.Return, error)
}
