package mapper

import (
	"time"

	returntypes "github.com/laboquimica/kalium-review/internal/domains/returns/application/types"
	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
)

const dateLayout = "2006-01-02"

// ReviewItemRequest is the body of an item review.
type ReviewItemRequest struct {
	Outcome     string  `json:"outcome" binding:"required"`
	Observation *string `json:"observation,omitempty"`
}

// RejectRequest is the body of a rejection.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Student is the HTTP representation of the student who returned the items.
type Student struct {
	ID       int64  `json:"id,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// Return is the HTTP representation of the return under review.
type Return struct {
	ID              int64    `json:"id"`
	DeliveryID      int64    `json:"deliveryId"`
	OrderID         int64    `json:"orderId,omitempty"`
	ReturnDate      string   `json:"returnDate,omitempty"`
	ReturnTime      string   `json:"returnTime,omitempty"`
	StatusID        int64    `json:"statusId"`
	Status          string   `json:"status"`
	StatusLabel     string   `json:"statusLabel,omitempty"`
	RejectionReason *string  `json:"rejectionReason,omitempty"`
	Student         *Student `json:"student,omitempty"`
}

// Item is one row of the review table.
type Item struct {
	ID          int64   `json:"id"`
	TypeName    string  `json:"typeName"`
	Category    string  `json:"category"`
	Outcome     string  `json:"outcome"`
	Observation *string `json:"observation,omitempty"`
	Processing  bool    `json:"processing,omitempty"`
}

// Phase names the view state and carries its payload.
type Phase struct {
	Name            string `json:"name"`
	ItemID          int64  `json:"itemId,omitempty"`
	Action          string `json:"action,omitempty"`
	Message         string `json:"message,omitempty"`
	Redirect        string `json:"redirect,omitempty"`
	RedirectAfterMs int64  `json:"redirectAfterMs,omitempty"`
}

// Notice is a transient message with its expiry.
type Notice struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReviewView is the full state of an open return view.
type ReviewView struct {
	Return         *Return `json:"return,omitempty"`
	Phase          Phase   `json:"phase"`
	Items          []Item  `json:"items"`
	PendingItemIDs []int64 `json:"pendingItemIds"`
	ReviewedCount  int     `json:"reviewedCount"`
	TotalCount     int     `json:"totalCount"`
	Complete       bool    `json:"complete"`
	CanReview      bool    `json:"canReview"`
	CanApprove     bool    `json:"canApprove"`
	CanReject      bool    `json:"canReject"`
	Error          string  `json:"error,omitempty"`
	Notice         *Notice `json:"notice,omitempty"`
}

// FromReviewView maps the application snapshot to its HTTP representation.
func FromReviewView(view *returntypes.ReviewView) ReviewView {
	if view == nil {
		return ReviewView{Phase: Phase{Name: domain.Loading{}.Name()}, Items: []Item{}, PendingItemIDs: []int64{}}
	}
	out := ReviewView{
		Return:         FromReturn(view.Return),
		Phase:          FromPhase(view.Phase),
		Items:          make([]Item, 0, len(view.Items)),
		PendingItemIDs: append([]int64{}, view.PendingItemIDs...),
		ReviewedCount:  view.ReviewedCount,
		TotalCount:     len(view.Items),
		Complete:       view.Complete,
		CanReview:      view.CanReview,
		CanApprove:     view.CanApprove,
		CanReject:      view.CanReject,
		Error:          view.Error,
	}
	if out.Return != nil && view.StatusLabel != "" {
		out.Return.StatusLabel = view.StatusLabel
	}
	for _, row := range view.Items {
		out.Items = append(out.Items, Item{
			ID:          row.ItemID,
			TypeName:    row.TypeName,
			Category:    row.Category,
			Outcome:     string(row.Outcome),
			Observation: row.Observation,
			Processing:  row.Processing,
		})
	}
	if view.Notice != nil {
		out.Notice = &Notice{Message: view.Notice.Message, ExpiresAt: view.Notice.ExpiresAt}
	}
	return out
}

// FromReturn maps a domain return.
func FromReturn(ret *domain.Return) *Return {
	if ret == nil {
		return nil
	}
	out := &Return{
		ID:              ret.ID,
		DeliveryID:      ret.DeliveryID,
		OrderID:         ret.OrderID,
		StatusID:        int64(ret.Status),
		Status:          ret.Status.String(),
		StatusLabel:     ret.StatusLabel,
		RejectionReason: ret.RejectionReason,
	}
	if !ret.ReturnDate.IsZero() {
		out.ReturnDate = ret.ReturnDate.Format(dateLayout)
	}
	if ret.ReturnTime != nil {
		out.ReturnTime = ret.ReturnTime.Format(time.TimeOnly)
	}
	if ret.Student != nil {
		out.Student = &Student{ID: ret.Student.ID, FullName: ret.Student.FullName()}
	}
	return out
}

// FromPhase flattens the phase union.
func FromPhase(phase domain.Phase) Phase {
	if phase == nil {
		return Phase{Name: domain.Loading{}.Name()}
	}
	out := Phase{Name: phase.Name()}
	switch p := phase.(type) {
	case domain.Reviewing:
		out.ItemID = p.ItemID
	case domain.Deciding:
		out.Action = string(p.Action)
	case domain.NotFound:
		out.Message = p.Message
		out.Redirect = p.RedirectTo
		out.RedirectAfterMs = p.RedirectAfter.Milliseconds()
	}
	return out
}
