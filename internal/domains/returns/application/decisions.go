package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

// ExecuteDecision sends one approval or rejection to the backend.
func ExecuteDecision(ctx context.Context, backend ports.Backend, cmd ports.DecisionCommand) (*domain.Return, error) {
	if backend == nil {
		return nil, errors.New("returns backend not configured")
	}
	switch cmd.Action {
	case domain.DecisionApprove:
		return backend.Approve(ctx, cmd.ReturnID)
	case domain.DecisionReject:
		return backend.Reject(ctx, cmd.ReturnID, cmd.Reason)
	default:
		return nil, fmt.Errorf("unknown decision %q", cmd.Action)
	}
}

type directDecisions struct {
	backend ports.Backend
}

func (d directDecisions) Decide(ctx context.Context, cmd ports.DecisionCommand) (*domain.Return, error) {
	return ExecuteDecision(ctx, d.backend, cmd)
}
