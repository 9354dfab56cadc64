package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	operatordomain "github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	returntypes "github.com/laboquimica/kalium-review/internal/domains/returns/application/types"
	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

const (
	// DefaultRedirectPath is the returns list the caller lands on after a failed load.
	DefaultRedirectPath = "/devoluciones"
	// DefaultRedirectDelay is how long the not-found view stays before redirecting.
	DefaultRedirectDelay = 2 * time.Second
	// DefaultNoticeTTL is how long the incident notice is shown.
	DefaultNoticeTTL = 3 * time.Second
)

const (
	msgLoadFailed    = "No se pudo cargar la devolución"
	msgReviewFailed  = "No se pudo registrar la revisión"
	msgRefreshFailed = "No se pudo actualizar el estado de la revisión"
	msgApproveFailed = "No se pudo aprobar la devolución"
	msgRejectFailed  = "No se pudo rechazar la devolución"
	msgIncident      = "Se generó un incidente para el insumo %d (%s)"
)

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithDecisions routes approvals and rejections through an orchestrator.
func WithDecisions(d ports.DecisionOrchestrator) WorkflowOption {
	return func(w *Workflow) {
		w.decisions = d
	}
}

// WithEventPublisher sets the publisher notified after each mutation.
func WithEventPublisher(p ports.EventPublisher) WorkflowOption {
	return func(w *Workflow) {
		w.events = p
	}
}

// WithWorkflowLogger sets the logger used for best-effort side effects.
func WithWorkflowLogger(logger *slog.Logger) WorkflowOption {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) WorkflowOption {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithRedirect overrides where and when a failed load redirects.
func WithRedirect(path string, delay time.Duration) WorkflowOption {
	return func(w *Workflow) {
		if strings.TrimSpace(path) != "" {
			w.redirectTo = path
		}
		if delay > 0 {
			w.redirectAfter = delay
		}
	}
}

// Workflow is the review state machine of one open return view.
// The mutex guards view state only; backend calls run without it held and the
// phase acts as the single in-flight marker.
type Workflow struct {
	backend   ports.Backend
	decisions ports.DecisionOrchestrator
	events    ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	operator  operatordomain.Operator
	returnID  int64

	redirectTo    string
	redirectAfter time.Duration

	mu        sync.Mutex
	closed    bool
	phase     domain.Phase
	ret       *domain.Return
	states    []domain.StateOption
	delivery  *domain.Delivery
	details   map[int64]domain.DetailLine
	complete  bool
	lastError string
	notice    *returntypes.Notice
}

// NewWorkflow builds an unloaded workflow for returnID on behalf of operator.
func NewWorkflow(backend ports.Backend, operator operatordomain.Operator, returnID int64, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		backend:       backend,
		events:        ports.NoopEventPublisher,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           time.Now,
		operator:      operator,
		returnID:      returnID,
		redirectTo:    DefaultRedirectPath,
		redirectAfter: DefaultRedirectDelay,
		phase:         domain.Loading{},
		details:       map[int64]domain.DetailLine{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.decisions == nil {
		w.decisions = directDecisions{backend: backend}
	}
	if w.events == nil {
		w.events = ports.NoopEventPublisher
	}
	return w
}

type snapshot struct {
	ret      *domain.Return
	states   []domain.StateOption
	items    []domain.SupplyItem
	details  []domain.DetailLine
	complete bool
}

// Load fetches everything the view needs. Any failure leaves the workflow in
// the terminal NotFound phase and returns a *LoadError.
func (w *Workflow) Load(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if domain.IsBusy(w.phase) {
		w.mu.Unlock()
		return ErrBusy
	}
	w.phase = domain.Loading{}
	w.mu.Unlock()

	snap, err := w.fetch(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err != nil {
		notFound := domain.NotFound{
			Message:       msgLoadFailed,
			RedirectTo:    w.redirectTo,
			RedirectAfter: w.redirectAfter,
		}
		w.phase = notFound
		return &LoadError{Phase: notFound, Err: err}
	}
	w.states = snap.states
	w.ret = w.labelled(snap.ret)
	w.delivery = &domain.Delivery{ID: snap.ret.DeliveryID, OrderID: snap.ret.OrderID, Items: snap.items}
	w.setDetails(snap.details)
	w.complete = snap.complete
	w.lastError = ""
	w.phase = domain.Loaded{}
	return nil
}

func (w *Workflow) fetch(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ret, err := w.backend.GetReturn(gctx, w.returnID)
		if err != nil {
			return fmt.Errorf("load return %d: %w", w.returnID, err)
		}
		if ret == nil {
			return fmt.Errorf("load return %d: %w", w.returnID, ports.ErrNotFound)
		}
		snap.ret = ret
		return nil
	})
	g.Go(func() error {
		states, err := w.backend.ListReturnStates(gctx)
		if err != nil {
			return fmt.Errorf("load return states: %w", err)
		}
		snap.states = states
		return nil
	})
	g.Go(func() error {
		details, err := w.backend.ListDetails(gctx, w.returnID)
		if err != nil {
			return fmt.Errorf("load details of return %d: %w", w.returnID, err)
		}
		snap.details = details
		return nil
	})
	g.Go(func() error {
		complete, err := w.backend.IsReviewComplete(gctx, w.returnID)
		if err != nil {
			return fmt.Errorf("load completeness of return %d: %w", w.returnID, err)
		}
		snap.complete = complete
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	items, err := w.backend.ListDeliveryItems(ctx, snap.ret.DeliveryID)
	if err != nil {
		return nil, fmt.Errorf("load items of delivery %d: %w", snap.ret.DeliveryID, err)
	}
	snap.items = items
	return &snap, nil
}

// ReviewItem records the outcome of one delivered item, then re-reads the
// detail list and the completeness flag.
func (w *Workflow) ReviewItem(ctx context.Context, itemID int64, rawOutcome string, observation *string) error {
	w.mu.Lock()
	if err := w.guardMutation(); err != nil {
		w.mu.Unlock()
		return err
	}
	if err := w.ret.CanReview(); err != nil {
		w.mu.Unlock()
		return mapError(err)
	}
	if !w.delivery.HasItem(itemID) {
		w.mu.Unlock()
		return mapError(fmt.Errorf("item %d: %w", itemID, domain.ErrUnknownItem))
	}
	outcome, err := domain.ParseOutcome(rawOutcome)
	if err != nil {
		w.mu.Unlock()
		return mapError(err)
	}
	w.phase = domain.Reviewing{ItemID: itemID}
	w.lastError = ""
	w.mu.Unlock()

	line := domain.DetailLine{
		ReturnID:    w.returnID,
		ItemID:      itemID,
		Outcome:     outcome,
		Observation: normalizeObservation(observation),
	}
	if _, err := w.backend.SubmitDetail(ctx, line); err != nil {
		w.fail(msgReviewFailed, err)
		return fmt.Errorf("%w: submit detail for item %d: %w", ErrBackend, itemID, err)
	}

	details, complete, err := w.refreshDetails(ctx)
	if err != nil {
		w.fail(msgRefreshFailed, err)
		return fmt.Errorf("%w: refresh review of return %d: %w", ErrBackend, w.returnID, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.setDetails(details)
	w.complete = complete
	if outcome.RaisesIncident() {
		w.notice = &returntypes.Notice{
			Message:   fmt.Sprintf(msgIncident, itemID, outcome),
			ExpiresAt: w.now().Add(DefaultNoticeTTL),
		}
	}
	w.phase = domain.Loaded{}
	w.mu.Unlock()

	w.publish(ctx, domain.ItemReviewed{
		ReturnID:         w.returnID,
		ItemID:           itemID,
		Outcome:          outcome,
		OperatorID:       w.operator.ID,
		IncidentExpected: outcome.RaisesIncident(),
		ReviewComplete:   complete,
		At:               w.now(),
	})
	return nil
}

func (w *Workflow) refreshDetails(ctx context.Context) ([]domain.DetailLine, bool, error) {
	var (
		details  []domain.DetailLine
		complete bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = w.backend.ListDetails(gctx, w.returnID)
		return err
	})
	g.Go(func() error {
		var err error
		complete, err = w.backend.IsReviewComplete(gctx, w.returnID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	return details, complete, nil
}

// Approve approves the return once every item is reviewed. Gate failures make
// no backend call.
func (w *Workflow) Approve(ctx context.Context) error {
	w.mu.Lock()
	if err := w.guardMutation(); err != nil {
		w.mu.Unlock()
		return err
	}
	if err := w.ret.CanApprove(w.complete); err != nil {
		w.mu.Unlock()
		return mapError(err)
	}
	w.phase = domain.Deciding{Action: domain.DecisionApprove}
	w.lastError = ""
	w.mu.Unlock()

	updated, err := w.decisions.Decide(ctx, ports.DecisionCommand{
		ReturnID:   w.returnID,
		Action:     domain.DecisionApprove,
		OperatorID: w.operator.ID,
	})
	if err != nil {
		w.fail(msgApproveFailed, err)
		return fmt.Errorf("%w: approve return %d: %w", ErrBackend, w.returnID, err)
	}
	if !w.settle(updated) {
		return nil
	}
	w.publish(ctx, domain.ReturnApproved{ReturnID: w.returnID, OperatorID: w.operator.ID, At: w.now()})
	return nil
}

// Reject rejects the return with a non-empty reason. Gate failures make no
// backend call.
func (w *Workflow) Reject(ctx context.Context, reason string) error {
	w.mu.Lock()
	if err := w.guardMutation(); err != nil {
		w.mu.Unlock()
		return err
	}
	trimmed, err := w.ret.CanReject(reason)
	if err != nil {
		w.mu.Unlock()
		return mapError(err)
	}
	w.phase = domain.Deciding{Action: domain.DecisionReject}
	w.lastError = ""
	w.mu.Unlock()

	updated, err := w.decisions.Decide(ctx, ports.DecisionCommand{
		ReturnID:   w.returnID,
		Action:     domain.DecisionReject,
		Reason:     trimmed,
		OperatorID: w.operator.ID,
	})
	if err != nil {
		w.fail(msgRejectFailed, err)
		return fmt.Errorf("%w: reject return %d: %w", ErrBackend, w.returnID, err)
	}
	if updated != nil && updated.RejectionReason == nil {
		updated.RejectionReason = &trimmed
	}
	if !w.settle(updated) {
		return nil
	}
	w.publish(ctx, domain.ReturnRejected{ReturnID: w.returnID, OperatorID: w.operator.ID, Reason: trimmed, At: w.now()})
	return nil
}

// settle installs the record returned by a decision. It reports false when the
// view was closed meanwhile.
func (w *Workflow) settle(updated *domain.Return) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	if updated != nil {
		w.ret = w.labelled(updated)
	}
	w.phase = domain.Loaded{}
	return true
}

// Close detaches the workflow. Responses that arrive later are dropped.
func (w *Workflow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// Operator returns the operator the view was opened for.
func (w *Workflow) Operator() operatordomain.Operator {
	return w.operator
}

// View returns a snapshot of the current view state.
func (w *Workflow) View() *returntypes.ReviewView {
	w.mu.Lock()
	defer w.mu.Unlock()

	view := &returntypes.ReviewView{
		Phase:    w.phase,
		Complete: w.complete,
		Error:    w.lastError,
	}
	if w.notice != nil && w.now().Before(w.notice.ExpiresAt) {
		notice := *w.notice
		view.Notice = &notice
	}
	if w.ret == nil {
		return view
	}
	ret := *w.ret
	view.Return = &ret
	view.StatusLabel = ret.StatusLabel

	var processing int64
	if reviewing, ok := w.phase.(domain.Reviewing); ok {
		processing = reviewing.ItemID
	}
	if w.delivery != nil {
		view.Items = make([]returntypes.ItemRow, 0, len(w.delivery.Items))
		for _, item := range w.delivery.Items {
			row := returntypes.ItemRow{
				ItemID:     item.ID,
				TypeName:   item.TypeName,
				Category:   item.Category,
				Outcome:    domain.OutcomeNotReviewed,
				Processing: item.ID == processing,
			}
			if line, ok := w.details[item.ID]; ok {
				row.Outcome = line.Outcome
				row.Observation = line.Observation
				view.ReviewedCount++
			} else {
				view.PendingItemIDs = append(view.PendingItemIDs, item.ID)
			}
			view.Items = append(view.Items, row)
		}
	}

	_, idle := w.phase.(domain.Loaded)
	editable := idle && !w.closed && w.operator.IsAdmin() && ret.IsPending()
	view.CanReview = editable
	view.CanReject = editable
	view.CanApprove = editable && w.complete
	return view
}

func (w *Workflow) guardMutation() error {
	if w.closed {
		return ErrClosed
	}
	if domain.IsBusy(w.phase) {
		return ErrBusy
	}
	if _, ok := w.phase.(domain.Loaded); !ok || w.ret == nil {
		return ErrNotLoaded
	}
	if !w.operator.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// fail restores the idle phase and records the inline error. State is otherwise untouched.
func (w *Workflow) fail(fallback string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.phase = domain.Loaded{}
	w.lastError = RemoteMessage(err, fallback)
}

// setDetails keeps one line per item; later lines in the list win.
func (w *Workflow) setDetails(lines []domain.DetailLine) {
	details := make(map[int64]domain.DetailLine, len(lines))
	for _, line := range lines {
		details[line.ItemID] = line
	}
	w.details = details
}

func (w *Workflow) labelled(ret *domain.Return) *domain.Return {
	copyRet := *ret
	for _, state := range w.states {
		if state.ID == copyRet.Status && state.Label != "" {
			copyRet.StatusLabel = state.Label
			break
		}
	}
	return &copyRet
}

func (w *Workflow) publish(ctx context.Context, event domain.Event) {
	if err := w.events.Publish(ctx, event); err != nil {
		w.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish review event",
			slog.String("event", event.EventName()),
			slog.Int64("return.id", event.AggregateID()),
			slog.String("error", err.Error()),
		)
	}
}

func normalizeObservation(observation *string) *string {
	if observation == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*observation)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
