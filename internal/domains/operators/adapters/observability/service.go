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

	"github.com/laboquimica/kalium-review/internal/domains/operators/application"
	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

const tracerName = "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/observability/service"

// Service decorates the operator session service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core session service.
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

func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "OperatorService.Login", trace.WithAttributes(attribute.String("operator.email", creds.Email)))
	defer span.End()
	session, err := s.inner.Login(ctx, creds)
	if err != nil {
		s.metrics.recordLoginFailure(ctx)
		return nil, s.handleError(ctx, span, err, "login failed", slog.String("operator.email", creds.Email))
	}
	s.metrics.recordLogin(ctx)
	span.SetAttributes(attribute.Int64("operator.id", session.Operator.ID), attribute.Bool("operator.admin", session.Operator.IsAdmin()))
	s.logInfo(ctx, "operator logged in",
		slog.Int64("operator.id", session.Operator.ID),
		slog.String("operator.role", session.Operator.Role),
	)
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "OperatorService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

func (s *Service) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "OperatorService.Resolve")
	defer span.End()
	session, err := s.inner.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, application.ErrUnauthenticated) {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "session lookup failed")
	}
	span.SetAttributes(attribute.Int64("operator.id", session.Operator.ID))
	return session, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	logins, _ := m.Int64Counter("operators.service.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("operators.service.login_failures", metric.WithDescription("Number of refused logins"))
	return serviceMetrics{logins: logins, loginFailures: failures}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLoginFailure(ctx context.Context) {
	if m.loginFailures != nil {
		m.loginFailures.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
