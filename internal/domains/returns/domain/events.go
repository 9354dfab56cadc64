package domain

import "time"

// Event is raised after a mutation is acknowledged by the backend.
type Event interface {
	EventName() string
	AggregateID() int64
	OccurredAt() time.Time
}

// ItemReviewed is raised when an item outcome is recorded.
type ItemReviewed struct {
	ReturnID         int64     `json:"returnId"`
	ItemID           int64     `json:"itemId"`
	Outcome          Outcome   `json:"outcome"`
	OperatorID       int64     `json:"operatorId"`
	IncidentExpected bool      `json:"incidentExpected"`
	ReviewComplete   bool      `json:"reviewComplete"`
	At               time.Time `json:"at"`
}

func (e ItemReviewed) EventName() string     { return "returns.item.reviewed" }
func (e ItemReviewed) AggregateID() int64    { return e.ReturnID }
func (e ItemReviewed) OccurredAt() time.Time { return e.At }

// ReturnApproved is raised after a successful approval.
type ReturnApproved struct {
	ReturnID   int64     `json:"returnId"`
	OperatorID int64     `json:"operatorId"`
	At         time.Time `json:"at"`
}

func (e ReturnApproved) EventName() string     { return "returns.return.approved" }
func (e ReturnApproved) AggregateID() int64    { return e.ReturnID }
func (e ReturnApproved) OccurredAt() time.Time { return e.At }

// ReturnRejected is raised after a successful rejection.
type ReturnRejected struct {
	ReturnID   int64     `json:"returnId"`
	OperatorID int64     `json:"operatorId"`
	Reason     string    `json:"reason"`
	At         time.Time `json:"at"`
}

func (e ReturnRejected) EventName() string     { return "returns.return.rejected" }
func (e ReturnRejected) AggregateID() int64    { return e.ReturnID }
func (e ReturnRejected) OccurredAt() time.Time { return e.At }
