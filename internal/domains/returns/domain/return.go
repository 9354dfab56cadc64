package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotPending       = errors.New("return is no longer pending")
	ErrReviewIncomplete = errors.New("every delivered item must be reviewed before approval")
	ErrReasonRequired   = errors.New("a rejection reason is required")
	ErrUnknownItem      = errors.New("item does not belong to the return's delivery")
	ErrInvalidOutcome   = errors.New("outcome must be OK, DAÑADO or FALTANTE")
)

// Status is the numeric state id assigned by the backend.
type Status int64

const (
	StatusPending  Status = 1
	StatusApproved Status = 2
	StatusRejected Status = 3
)

// IsTerminal reports whether the return can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusApproved:
		return "APPROVED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// StateOption is a row of the return states lookup.
type StateOption struct {
	ID    Status
	Label string
}

// Student identifies who received the delivery. Every field is optional on the wire.
type Student struct {
	ID        int64
	FirstName string
	LastName  string
}

// FullName joins the available name parts.
func (s *Student) FullName() string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Return is the aggregate under review.
type Return struct {
	ID              int64
	DeliveryID      int64
	OrderID         int64
	ReturnDate      time.Time
	ReturnTime      *time.Time
	Status          Status
	StatusLabel     string
	RejectionReason *string
	Student         *Student
}

// IsPending reports whether the return still accepts reviews and decisions.
func (r *Return) IsPending() bool {
	return r != nil && r.Status == StatusPending
}

// CanReview checks whether item outcomes may still be recorded.
func (r *Return) CanReview() error {
	if !r.IsPending() {
		return ErrNotPending
	}
	return nil
}

// CanApprove applies the approval gate. complete is the server-computed flag.
func (r *Return) CanApprove(complete bool) error {
	if !r.IsPending() {
		return ErrNotPending
	}
	if !complete {
		return ErrReviewIncomplete
	}
	return nil
}

// CanReject applies the rejection gate and returns the trimmed reason.
func (r *Return) CanReject(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", ErrReasonRequired
	}
	if !r.IsPending() {
		return "", ErrNotPending
	}
	return reason, nil
}

// SupplyItem is one physical unit handed out in a delivery.
type SupplyItem struct {
	ID       int64
	TypeName string
	Category string
}

// Delivery groups the items a return is reviewed against.
type Delivery struct {
	ID      int64
	OrderID int64
	Items   []SupplyItem
}

// HasItem reports whether itemID was part of the delivery.
func (d *Delivery) HasItem(itemID int64) bool {
	if d == nil {
		return false
	}
	for _, item := range d.Items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}

// DetailLine records the review outcome of one item. One line per (return, item).
type DetailLine struct {
	ID          int64
	ReturnID    int64
	ItemID      int64
	Outcome     Outcome
	Observation *string
}
