package returns

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"

	"github.com/laboquimica/kalium-review/internal/domains/returns/application"
	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

const (
	// ApproveReturnActivityName approves a return on the backend.
	ApproveReturnActivityName = "returns.activities.ApproveReturn"
	// RejectReturnActivityName rejects a return on the backend.
	RejectReturnActivityName = "returns.activities.RejectReturn"

	// RemoteErrorType tags application errors that carry a backend answer.
	RemoteErrorType = "returns.RemoteError"
)

// Activities applies review decisions against the backend.
type Activities struct {
	backend ports.Backend
}

// NewActivities wires the backend port into the activities bundle.
func NewActivities(backend ports.Backend) *Activities {
	return &Activities{backend: backend}
}

// Register adds the activities to a worker under their public names.
func (a *Activities) Register(r worker.ActivityRegistry) {
	r.RegisterActivityWithOptions(a.ApproveReturn, activity.RegisterOptions{Name: ApproveReturnActivityName})
	r.RegisterActivityWithOptions(a.RejectReturn, activity.RegisterOptions{Name: RejectReturnActivityName})
}

// ApproveReturn approves the return named by cmd.
func (a *Activities) ApproveReturn(ctx context.Context, cmd ports.DecisionCommand) (*domain.Return, error) {
	cmd.Action = domain.DecisionApprove
	return a.decide(ctx, cmd)
}

// RejectReturn rejects the return named by cmd with its reason.
func (a *Activities) RejectReturn(ctx context.Context, cmd ports.DecisionCommand) (*domain.Return, error) {
	cmd.Action = domain.DecisionReject
	return a.decide(ctx, cmd)
}

func (a *Activities) decide(ctx context.Context, cmd ports.DecisionCommand) (*domain.Return, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.backend == nil {
		logger.Error("return decision activity not initialized", "returnId", cmd.ReturnID)
		return nil, errors.New("return decision activity not initialized")
	}
	logger.Info("return decision started", "returnId", cmd.ReturnID, "action", string(cmd.Action), "operatorId", cmd.OperatorID)
	ret, err := application.ExecuteDecision(ctx, a.backend, cmd)
	if err != nil {
		logger.Error("return decision failed", "returnId", cmd.ReturnID, "action", string(cmd.Action), "error", err)
		return nil, wrapRemote(err)
	}
	logger.Info("return decision completed", "returnId", cmd.ReturnID, "action", string(cmd.Action))
	return ret, nil
}

// wrapRemote turns backend answers into non-retryable errors whose details
// survive the trip through the workflow.
func wrapRemote(err error) error {
	var remote *ports.RemoteError
	if !errors.As(err, &remote) {
		return err
	}
	return temporal.NewNonRetryableApplicationError(remote.Error(), RemoteErrorType, err, remote.Status, remote.Message)
}

// RemoteErrorFrom restores a *ports.RemoteError from a workflow failure.
// Other errors are returned as is.
func RemoteErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || appErr.Type() != RemoteErrorType {
		return err
	}
	remote := &ports.RemoteError{}
	if derr := appErr.Details(&remote.Status, &remote.Message); derr != nil {
		return err
	}
	return remote
}
