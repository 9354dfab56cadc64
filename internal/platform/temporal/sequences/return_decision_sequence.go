package sequences

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
	returnactivities "github.com/laboquimica/kalium-review/internal/platform/temporal/activities/returns"
)

// DecisionActivityTimeout bounds a single approve or reject activity.
const DecisionActivityTimeout = 30 * time.Second

// RunReturnDecisionSequence applies one decision. Decisions are not
// idempotent on the backend, so the activity runs at most once.
func RunReturnDecisionSequence(ctx workflow.Context, cmd ports.DecisionCommand) (*domain.Return, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("return decision sequence started", "returnId", cmd.ReturnID, "action", string(cmd.Action))

	var activityName string
	switch cmd.Action {
	case domain.DecisionApprove:
		activityName = returnactivities.ApproveReturnActivityName
	case domain.DecisionReject:
		activityName = returnactivities.RejectReturnActivityName
	default:
		return nil, temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown decision %q", cmd.Action), "returns.UnknownDecision", nil)
	}

	options := workflow.ActivityOptions{
		StartToCloseTimeout: DecisionActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	var ret domain.Return
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), activityName, cmd).Get(ctx, &ret)
	if err != nil {
		logger.Error("return decision sequence failed", "returnId", cmd.ReturnID, "error", err)
		return nil, err
	}
	logger.Info("return decision sequence completed", "returnId", ret.ID, "status", ret.Status.String())
	return &ret, nil
}
