package returns

import (
	"go.temporal.io/sdk/workflow"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
	"github.com/laboquimica/kalium-review/internal/platform/temporal/sequences"
)

const (
	// DecisionWorkflowName is the public identifier for registering the workflow.
	DecisionWorkflowName = "returns.workflows.Decision"
	// DecisionTaskQueue is the queue consumed by the decision worker.
	DecisionTaskQueue = "RETURN_DECISIONS"
)

// DecisionWorkflowInput carries one gated decision.
type DecisionWorkflowInput struct {
	Command ports.DecisionCommand
	TraceID string
}

// DecisionWorkflow applies an approval or rejection through the backend.
func DecisionWorkflow(ctx workflow.Context, input DecisionWorkflowInput) (*domain.Return, error) {
	logger := workflow.GetLogger(ctx)
	returnID := input.Command.ReturnID
	logger.Info("DecisionWorkflow started", withTraceID(input.TraceID, "returnId", returnID, "action", string(input.Command.Action))...)
	ret, err := sequences.RunReturnDecisionSequence(ctx, input.Command)
	if err != nil {
		logger.Error("DecisionWorkflow failed", withTraceID(input.TraceID, "returnId", returnID, "error", err)...)
		return nil, err
	}
	logger.Info("DecisionWorkflow completed", withTraceID(input.TraceID, "returnId", returnID, "status", ret.Status.String())...)
	return ret, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
