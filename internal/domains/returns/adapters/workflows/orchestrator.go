package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/laboquimica/kalium-review/internal/domains/returns/application"
	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
	returnactivities "github.com/laboquimica/kalium-review/internal/platform/temporal/activities/returns"
	"github.com/laboquimica/kalium-review/internal/platform/temporal/sequences"
	returnworkflows "github.com/laboquimica/kalium-review/internal/platform/temporal/workflows/returns"
)

var (
	_ ports.DecisionOrchestrator = (*TemporalDecisions)(nil)
	_ ports.DecisionOrchestrator = (*InlineDecisions)(nil)
)

// DefaultDecisionTimeout caps how long a caller waits for a decision workflow.
const DefaultDecisionTimeout = sequences.DecisionActivityTimeout + 15*time.Second

// TemporalDecisions runs decisions as Temporal workflows.
type TemporalDecisions struct {
	client    client.Client
	taskQueue string
	timeout   time.Duration
}

// TemporalOption customises the Temporal orchestrator.
type TemporalOption func(*TemporalDecisions)

// WithDecisionTimeout bounds both the workflow execution and the wait for its result.
func WithDecisionTimeout(timeout time.Duration) TemporalOption {
	return func(o *TemporalDecisions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// NewTemporalDecisions wires a Temporal client into the orchestrator.
func NewTemporalDecisions(c client.Client, opts ...TemporalOption) *TemporalDecisions {
	o := &TemporalDecisions{
		client:    c,
		taskQueue: returnworkflows.DecisionTaskQueue,
		timeout:   DefaultDecisionTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Decide starts the decision workflow and waits for its result.
func (o *TemporalDecisions) Decide(ctx context.Context, cmd ports.DecisionCommand) (*domain.Return, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal return decisions not configured")
	}
	// A queued task with no worker polling would otherwise hold the view in Deciding.
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildDecisionWorkflowID(cmd, traceComponent)
	options := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                o.taskQueue,
		WorkflowExecutionTimeout: o.timeout,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		returnworkflows.DecisionWorkflowName,
		returnworkflows.DecisionWorkflowInput{Command: cmd, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var ret domain.Return
	if err := run.Get(ctx, &ret); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("decision workflow %s did not complete: %w", workflowID, ctxErr)
		}
		return nil, returnactivities.RemoteErrorFrom(err)
	}
	return &ret, nil
}

// InlineDecisions calls the backend directly, for tests or when Temporal is disabled.
type InlineDecisions struct {
	backend ports.Backend
}

// NewInlineDecisions wraps the backend for synchronous execution.
func NewInlineDecisions(backend ports.Backend) *InlineDecisions {
	return &InlineDecisions{backend: backend}
}

// Decide applies the decision without durable orchestration.
func (o *InlineDecisions) Decide(ctx context.Context, cmd ports.DecisionCommand) (*domain.Return, error) {
	if o == nil || o.backend == nil {
		return nil, errors.New("inline return decisions not configured")
	}
	return application.ExecuteDecision(ctx, o.backend, cmd)
}

func buildDecisionWorkflowID(cmd ports.DecisionCommand, traceComponent string) string {
	return fmt.Sprintf("return-decision-%d-%s-%s", cmd.ReturnID, cmd.Action, traceComponent)
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
