package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/laboquimica/kalium-review/internal/domains/returns/application"
	returntypes "github.com/laboquimica/kalium-review/internal/domains/returns/application/types"
	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
	"github.com/laboquimica/kalium-review/internal/platform/metrics"
)

const tracerName = "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/observability/service"

// Service decorates the review port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// Open loads a return view.
func (s *Service) Open(ctx context.Context, ref returntypes.ViewRef) (*returntypes.ReviewView, error) {
	ctx, span := s.startSpan(ctx, "Service.Open", refAttrs(ref)...)
	defer span.End()

	s.logInfo(ctx, "opening return", refLogAttrs(ref)...)
	view, err := s.inner.Open(ctx, ref)
	if err != nil {
		return view, s.handleError(ctx, span, "open", err, "failed to open return", refLogAttrs(ref)...)
	}
	if view != nil {
		span.SetAttributes(
			attribute.Int("return.items", len(view.Items)),
			attribute.Bool("return.complete", view.Complete),
		)
		s.logInfo(ctx, "return opened", append(refLogAttrs(ref),
			slog.String("status", view.StatusLabel),
			slog.Int("items", len(view.Items)),
			slog.Int("reviewed", view.ReviewedCount),
		)...)
	}
	return view, nil
}

// Reload re-reads an open view.
func (s *Service) Reload(ctx context.Context, ref returntypes.ViewRef) (*returntypes.ReviewView, error) {
	ctx, span := s.startSpan(ctx, "Service.Reload", refAttrs(ref)...)
	defer span.End()

	view, err := s.inner.Reload(ctx, ref)
	if err != nil {
		return view, s.handleError(ctx, span, "reload", err, "failed to reload return", refLogAttrs(ref)...)
	}
	if view != nil {
		span.SetAttributes(attribute.Bool("return.complete", view.Complete))
		s.logInfo(ctx, "return reloaded", append(refLogAttrs(ref), slog.Int("reviewed", view.ReviewedCount))...)
	}
	return view, nil
}

// ReviewItem records one item outcome.
func (s *Service) ReviewItem(ctx context.Context, input returntypes.ReviewItemInput) (*returntypes.ReviewView, error) {
	attrs := append(refAttrs(input.ViewRef),
		attribute.Int64("item.id", input.ItemID),
		attribute.String("item.outcome", input.Outcome),
	)
	ctx, span := s.startSpan(ctx, "Service.ReviewItem", attrs...)
	defer span.End()

	logAttrs := append(refLogAttrs(input.ViewRef), slog.Int64("item.id", input.ItemID), slog.String("outcome", input.Outcome))
	s.logInfo(ctx, "reviewing item", logAttrs...)
	view, err := s.inner.ReviewItem(ctx, input)
	if err != nil {
		return view, s.handleError(ctx, span, "review_item", err, "failed to review item", logAttrs...)
	}
	outcome := input.Outcome
	if parsed, perr := domain.ParseOutcome(input.Outcome); perr == nil {
		outcome = string(parsed)
	}
	s.metrics.recordReviewed(ctx, outcome)
	metrics.ItemsReviewedTotal.WithLabelValues(outcome).Inc()
	if view != nil {
		span.SetAttributes(attribute.Bool("return.complete", view.Complete))
		s.logInfo(ctx, "item reviewed", append(logAttrs, slog.Bool("complete", view.Complete))...)
	}
	return view, nil
}

// Approve approves the return.
func (s *Service) Approve(ctx context.Context, input returntypes.ApproveInput) (*returntypes.ReviewView, error) {
	ctx, span := s.startSpan(ctx, "Service.Approve", refAttrs(input.ViewRef)...)
	defer span.End()

	s.logInfo(ctx, "approving return", refLogAttrs(input.ViewRef)...)
	view, err := s.inner.Approve(ctx, input)
	if err != nil {
		return view, s.handleError(ctx, span, "approve", err, "failed to approve return", refLogAttrs(input.ViewRef)...)
	}
	s.recordDecision(ctx, domain.DecisionApprove)
	s.logInfo(ctx, "return approved", refLogAttrs(input.ViewRef)...)
	return view, nil
}

// Reject rejects the return.
func (s *Service) Reject(ctx context.Context, input returntypes.RejectInput) (*returntypes.ReviewView, error) {
	ctx, span := s.startSpan(ctx, "Service.Reject", refAttrs(input.ViewRef)...)
	defer span.End()

	s.logInfo(ctx, "rejecting return", refLogAttrs(input.ViewRef)...)
	view, err := s.inner.Reject(ctx, input)
	if err != nil {
		return view, s.handleError(ctx, span, "reject", err, "failed to reject return", refLogAttrs(input.ViewRef)...)
	}
	s.recordDecision(ctx, domain.DecisionReject)
	s.logInfo(ctx, "return rejected", refLogAttrs(input.ViewRef)...)
	return view, nil
}

// Close drops the view.
func (s *Service) Close(ctx context.Context, ref returntypes.ViewRef) error {
	ctx, span := s.startSpan(ctx, "Service.Close", refAttrs(ref)...)
	defer span.End()

	if err := s.inner.Close(ctx, ref); err != nil {
		return s.handleError(ctx, span, "close", err, "failed to close return view", refLogAttrs(ref)...)
	}
	s.logInfo(ctx, "return view closed", refLogAttrs(ref)...)
	return nil
}

func (s *Service) recordDecision(ctx context.Context, action domain.Decision) {
	s.metrics.recordDecision(ctx, action)
	metrics.DecisionsTotal.WithLabelValues(string(action)).Inc()
}

func refAttrs(ref returntypes.ViewRef) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("return.id", ref.ReturnID),
		attribute.Int64("operator.id", ref.Operator.ID),
	}
}

func refLogAttrs(ref returntypes.ViewRef) []slog.Attr {
	return []slog.Attr{
		slog.Int64("return.id", ref.ReturnID),
		slog.Int64("operator.id", ref.Operator.ID),
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, level slog.Level, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

// handleError records err on the span. Gate rejections log at warn since
// they never reached the backend.
func (s *Service) handleError(ctx context.Context, span trace.Span, operation string, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	kind := ErrorKind(err)
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", kind))
	}
	level := slog.LevelError
	switch kind {
	case "invalid_input", "precondition", "busy", "forbidden":
		level = slog.LevelWarn
	}
	s.logError(ctx, level, msg, err, append(attrs, slog.String("error.kind", kind))...)
	s.metrics.recordFailure(ctx, operation, kind)
	metrics.OperationErrorsTotal.WithLabelValues(operation, kind).Inc()
	return err
}

// ErrorKind buckets review errors into a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, application.ErrPrecondition):
		return "precondition"
	case errors.Is(err, application.ErrBusy):
		return "busy"
	case errors.Is(err, application.ErrForbidden):
		return "forbidden"
	case errors.Is(err, application.ErrLoadFailed):
		return "load"
	case errors.Is(err, application.ErrBackend):
		return "backend"
	default:
		return "other"
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	itemsReviewed metric.Int64Counter
	decisions     metric.Int64Counter
	failures      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	itemsReviewed, _ := m.Int64Counter("returns.service.items_reviewed", metric.WithDescription("Number of item outcomes recorded"))
	decisions, _ := m.Int64Counter("returns.service.decisions", metric.WithDescription("Number of approvals and rejections"))
	failures, _ := m.Int64Counter("returns.service.failures", metric.WithDescription("Number of failed review operations"))
	return serviceMetrics{
		itemsReviewed: itemsReviewed,
		decisions:     decisions,
		failures:      failures,
	}
}

func (m serviceMetrics) recordReviewed(ctx context.Context, outcome string) {
	addCounter(ctx, m.itemsReviewed, 1, attribute.String("item.outcome", outcome))
}

func (m serviceMetrics) recordDecision(ctx context.Context, action domain.Decision) {
	addCounter(ctx, m.decisions, 1, attribute.String("decision", string(action)))
}

func (m serviceMetrics) recordFailure(ctx context.Context, operation, kind string) {
	addCounter(ctx, m.failures, 1, attribute.String("operation", operation), attribute.String("error.kind", kind))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
