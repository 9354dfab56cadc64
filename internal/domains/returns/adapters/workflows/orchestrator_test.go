package workflows

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"
	temporalmocks "go.temporal.io/sdk/mocks"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

type stubBackend struct {
	ports.Backend
	rejected string
}

func (b *stubBackend) Reject(_ context.Context, returnID int64, reason string) (*domain.Return, error) {
	b.rejected = reason
	return &domain.Return{ID: returnID, Status: domain.StatusRejected}, nil
}

func TestInlineDecisions_Reject(t *testing.T) {
	backend := &stubBackend{}
	ret, err := NewInlineDecisions(backend).Decide(context.Background(), ports.DecisionCommand{
		ReturnID: 7,
		Action:   domain.DecisionReject,
		Reason:   "incompleto",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, ret.Status)
	require.Equal(t, "incompleto", backend.rejected)
}

func TestInlineDecisions_NotConfigured(t *testing.T) {
	var o *InlineDecisions
	_, err := o.Decide(context.Background(), ports.DecisionCommand{})
	require.Error(t, err)
}

func TestBuildDecisionWorkflowID_UsesTraceID(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	id := buildDecisionWorkflowID(ports.DecisionCommand{ReturnID: 7, Action: domain.DecisionApprove}, workflowTraceComponent(ctx))
	require.Equal(t, "return-decision-7-approve-4bf92f3577b34da6a3ce929d0e0e4736", id)
}

func TestTemporalDecisions_GivesUpWhenNoWorkerPolls(t *testing.T) {
	run := temporalmocks.NewWorkflowRun(t)
	run.On("Get", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, _ interface{}) error {
			<-ctx.Done()
			return ctx.Err()
		})

	var started client.StartWorkflowOptions
	temporalClient := temporalmocks.NewClient(t)
	temporalClient.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			started = args.Get(1).(client.StartWorkflowOptions)
		}).
		Return(run, nil)

	decisions := NewTemporalDecisions(temporalClient, WithDecisionTimeout(50*time.Millisecond))
	begin := time.Now()
	_, err := decisions.Decide(context.Background(), ports.DecisionCommand{ReturnID: 7, Action: domain.DecisionApprove})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(begin), 5*time.Second)
	require.Equal(t, 50*time.Millisecond, started.WorkflowExecutionTimeout)
	require.Equal(t, "RETURN_DECISIONS", started.TaskQueue)
}

func TestNewTemporalDecisions_DefaultTimeout(t *testing.T) {
	decisions := NewTemporalDecisions(nil, WithDecisionTimeout(0))
	require.Equal(t, DefaultDecisionTimeout, decisions.timeout)
}
