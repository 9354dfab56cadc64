package ports

import (
	"context"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
)

// DecisionCommand is an approval or rejection that already passed local gating.
type DecisionCommand struct {
	ReturnID   int64
	Action     domain.Decision
	Reason     string
	OperatorID int64
}

// DecisionOrchestrator carries a decision to the backend.
type DecisionOrchestrator interface {
	Decide(ctx context.Context, cmd DecisionCommand) (*domain.Return, error)
}
