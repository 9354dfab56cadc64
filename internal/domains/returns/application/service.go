package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	returntypes "github.com/laboquimica/kalium-review/internal/domains/returns/application/types"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

// DefaultViewTTL is how long an idle view stays registered.
const DefaultViewTTL = 15 * time.Minute

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithDecisionOrchestrator routes decisions of every hosted view.
func WithDecisionOrchestrator(d ports.DecisionOrchestrator) ServiceOption {
	return func(s *Service) {
		s.decisions = d
	}
}

// WithEvents sets the publisher shared by hosted views.
func WithEvents(p ports.EventPublisher) ServiceOption {
	return func(s *Service) {
		s.events = p
	}
}

// WithLogger sets the logger shared by hosted views.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithViewTTL overrides the idle eviction window.
func WithViewTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.viewTTL = ttl
		}
	}
}

// WithNotFoundRedirect overrides the redirect applied on failed loads.
func WithNotFoundRedirect(path string, delay time.Duration) ServiceOption {
	return func(s *Service) {
		s.redirectTo = path
		s.redirectAfter = delay
	}
}

// WithViewCountObserver is called with the number of hosted views after every change.
func WithViewCountObserver(fn func(int)) ServiceOption {
	return func(s *Service) {
		s.onViewCount = fn
	}
}

// WithServiceClock overrides time.Now.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

type viewKey struct {
	operatorID int64
	returnID   int64
}

type hostedView struct {
	workflow *Workflow
	lastUsed time.Time
}

// Service hosts one Workflow per operator and return.
type Service struct {
	backend       ports.Backend
	decisions     ports.DecisionOrchestrator
	events        ports.EventPublisher
	logger        *slog.Logger
	now           func() time.Time
	viewTTL       time.Duration
	redirectTo    string
	redirectAfter time.Duration
	onViewCount   func(int)

	mu    sync.Mutex
	views map[viewKey]*hostedView
}

// NewService wires the review service around the backend port.
func NewService(backend ports.Backend, opts ...ServiceOption) *Service {
	s := &Service{
		backend:       backend,
		events:        ports.NoopEventPublisher,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           time.Now,
		viewTTL:       DefaultViewTTL,
		redirectTo:    DefaultRedirectPath,
		redirectAfter: DefaultRedirectDelay,
		views:         map[viewKey]*hostedView{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open always performs a fresh load and replaces any view the operator had open.
func (s *Service) Open(ctx context.Context, ref returntypes.ViewRef) (*returntypes.ReviewView, error) {
	key := viewKey{operatorID: ref.Operator.ID, returnID: ref.ReturnID}
	wf := s.newWorkflow(ref)
	s.mu.Lock()
	s.evictExpiredLocked()
	if previous, ok := s.views[key]; ok {
		previous.workflow.Close()
	}
	s.views[key] = &hostedView{workflow: wf, lastUsed: s.now()}
	s.reportLocked()
	s.mu.Unlock()

	if err := wf.Load(ctx); err != nil {
		s.drop(key, wf)
		return wf.View(), mapError(err)
	}
	return wf.View(), nil
}

// Reload re-reads the operator's view in place, opening it when missing.
func (s *Service) Reload(ctx context.Context, ref returntypes.ViewRef) (*returntypes.ReviewView, error) {
	key := viewKey{operatorID: ref.Operator.ID, returnID: ref.ReturnID}
	s.mu.Lock()
	s.evictExpiredLocked()
	hosted, ok := s.views[key]
	if ok {
		hosted.lastUsed = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return s.Open(ctx, ref)
	}

	wf := hosted.workflow
	if err := wf.Load(ctx); err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			s.drop(key, wf)
		}
		return wf.View(), mapError(err)
	}
	return wf.View(), nil
}

// ReviewItem records an item outcome on the operator's view.
func (s *Service) ReviewItem(ctx context.Context, input returntypes.ReviewItemInput) (*returntypes.ReviewView, error) {
	wf, err := s.workflowFor(ctx, input.ViewRef)
	if err != nil {
		return viewOf(wf), err
	}
	err = wf.ReviewItem(ctx, input.ItemID, input.Outcome, input.Observation)
	return wf.View(), err
}

// Approve approves the return behind the operator's view.
func (s *Service) Approve(ctx context.Context, input returntypes.ApproveInput) (*returntypes.ReviewView, error) {
	wf, err := s.workflowFor(ctx, input.ViewRef)
	if err != nil {
		return viewOf(wf), err
	}
	err = wf.Approve(ctx)
	return wf.View(), err
}

// Reject rejects the return behind the operator's view.
func (s *Service) Reject(ctx context.Context, input returntypes.RejectInput) (*returntypes.ReviewView, error) {
	wf, err := s.workflowFor(ctx, input.ViewRef)
	if err != nil {
		return viewOf(wf), err
	}
	err = wf.Reject(ctx, input.Reason)
	return wf.View(), err
}

// Close forgets the operator's view. In-flight calls finish against a detached workflow.
func (s *Service) Close(_ context.Context, ref returntypes.ViewRef) error {
	key := viewKey{operatorID: ref.Operator.ID, returnID: ref.ReturnID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if hosted, ok := s.views[key]; ok {
		hosted.workflow.Close()
		delete(s.views, key)
		s.reportLocked()
	}
	return nil
}

// workflowFor returns the registered view or opens a fresh one.
func (s *Service) workflowFor(ctx context.Context, ref returntypes.ViewRef) (*Workflow, error) {
	key := viewKey{operatorID: ref.Operator.ID, returnID: ref.ReturnID}
	s.mu.Lock()
	s.evictExpiredLocked()
	if hosted, ok := s.views[key]; ok {
		hosted.lastUsed = s.now()
		s.mu.Unlock()
		return hosted.workflow, nil
	}
	s.mu.Unlock()

	wf := s.newWorkflow(ref)
	if err := wf.Load(ctx); err != nil {
		return wf, mapError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if hosted, ok := s.views[key]; ok {
		// another request opened the view meanwhile
		wf.Close()
		hosted.lastUsed = s.now()
		return hosted.workflow, nil
	}
	s.views[key] = &hostedView{workflow: wf, lastUsed: s.now()}
	s.reportLocked()
	return wf, nil
}

func (s *Service) newWorkflow(ref returntypes.ViewRef) *Workflow {
	return NewWorkflow(s.backend, ref.Operator, ref.ReturnID,
		WithDecisions(s.decisions),
		WithEventPublisher(s.events),
		WithWorkflowLogger(s.logger),
		WithClock(s.now),
		WithRedirect(s.redirectTo, s.redirectAfter),
	)
}

func (s *Service) drop(key viewKey, wf *Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hosted, ok := s.views[key]; ok && hosted.workflow == wf {
		delete(s.views, key)
		s.reportLocked()
	}
}

func (s *Service) evictExpiredLocked() {
	cutoff := s.now().Add(-s.viewTTL)
	evicted := false
	for key, hosted := range s.views {
		if hosted.lastUsed.Before(cutoff) {
			hosted.workflow.Close()
			delete(s.views, key)
			evicted = true
		}
	}
	if evicted {
		s.reportLocked()
	}
}

func (s *Service) reportLocked() {
	if s.onViewCount != nil {
		s.onViewCount(len(s.views))
	}
}

func viewOf(wf *Workflow) *returntypes.ReviewView {
	if wf == nil {
		return nil
	}
	return wf.View()
}

var _ ports.Service = (*Service)(nil)
