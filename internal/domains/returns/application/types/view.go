package types

import (
	"time"

	operatordomain "github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
)

// ViewRef identifies the return view an operator has open.
type ViewRef struct {
	Operator operatordomain.Operator
	ReturnID int64
}

// ReviewItemInput records one item outcome.
type ReviewItemInput struct {
	ViewRef
	ItemID      int64
	Outcome     string
	Observation *string
}

// ApproveInput approves the return behind the view.
type ApproveInput struct {
	ViewRef
}

// RejectInput rejects the return behind the view with a reason.
type RejectInput struct {
	ViewRef
	Reason string
}

// ItemRow is one delivered item with its derived review outcome.
type ItemRow struct {
	ItemID      int64
	TypeName    string
	Category    string
	Outcome     domain.Outcome
	Observation *string
	Processing  bool
}

// Notice is a transient message, shown until ExpiresAt.
type Notice struct {
	Message   string
	ExpiresAt time.Time
}

// ReviewView is a snapshot of an open return view.
type ReviewView struct {
	Return         *domain.Return
	StatusLabel    string
	Phase          domain.Phase
	Items          []ItemRow
	PendingItemIDs []int64
	ReviewedCount  int
	Complete       bool
	CanReview      bool
	CanApprove     bool
	CanReject      bool
	Error          string
	Notice         *Notice
}
