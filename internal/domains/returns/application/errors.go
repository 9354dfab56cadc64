package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

var (
	// ErrInvalidInput signals a malformed review request.
	ErrInvalidInput = errors.New("invalid review input")
	// ErrPrecondition signals a gate that blocked the operation before any backend call.
	ErrPrecondition = errors.New("review precondition failed")
	// ErrBusy is returned while another operation on the same view is in flight.
	ErrBusy = errors.New("another operation on this return is in progress")
	// ErrForbidden is returned when the operator is not an admin.
	ErrForbidden = errors.New("operator is not allowed to review returns")
	// ErrNotLoaded is returned when the view has no loaded return yet.
	ErrNotLoaded = errors.New("return view is not loaded")
	// ErrClosed is returned after the view was closed.
	ErrClosed = errors.New("return view was closed")
	// ErrLoadFailed wraps every failed initial load.
	ErrLoadFailed = errors.New("return could not be loaded")
	// ErrBackend wraps failed mutations.
	ErrBackend = errors.New("backend operation failed")
)

// LoadError describes a failed load and where the caller should go next.
type LoadError struct {
	Phase domain.NotFound
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", ErrLoadFailed, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoadFailed, e.Err}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidOutcome) ||
		errors.Is(err, domain.ErrUnknownItem) ||
		errors.Is(err, domain.ErrReasonRequired) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrNotPending) || errors.Is(err, domain.ErrReviewIncomplete) {
		return fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	return err
}

// RemoteMessage returns the backend's own message when it sent one, else fallback.
func RemoteMessage(err error, fallback string) string {
	var remote *ports.RemoteError
	if errors.As(err, &remote) {
		if msg := strings.TrimSpace(remote.Message); msg != "" {
			return msg
		}
	}
	return fallback
}
