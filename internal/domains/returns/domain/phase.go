package domain

import "time"

// Decision is the terminal action an admin takes on a return.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Phase is the view state of an open return. Exactly one variant holds at a time.
type Phase interface {
	Name() string
	phase()
}

// Loading is the phase before the first load completes.
type Loading struct{}

// Loaded is the idle phase; reviews and decisions may start.
type Loaded struct{}

// Reviewing marks the single item whose outcome is being submitted.
type Reviewing struct {
	ItemID int64
}

// Deciding marks an approval or rejection in flight.
type Deciding struct {
	Action Decision
}

// NotFound is terminal. The caller should navigate to RedirectTo after RedirectAfter.
type NotFound struct {
	Message       string
	RedirectTo    string
	RedirectAfter time.Duration
}

func (Loading) Name() string   { return "loading" }
func (Loaded) Name() string    { return "loaded" }
func (Reviewing) Name() string { return "reviewing" }
func (Deciding) Name() string  { return "deciding" }
func (NotFound) Name() string  { return "not_found" }

func (Loading) phase()   {}
func (Loaded) phase()    {}
func (Reviewing) phase() {}
func (Deciding) phase()  {}
func (NotFound) phase()  {}

// IsBusy reports whether a mutation is in flight.
func IsBusy(p Phase) bool {
	switch p.(type) {
	case Reviewing, Deciding:
		return true
	default:
		return false
	}
}
