package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	reviewserver "github.com/laboquimica/kalium-review/go"
	"github.com/laboquimica/kalium-review/internal/clients/http/kalium"
	operatorsbackend "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/backend"
	operatorsmemory "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/memory"
	operatorsobs "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/observability"
	operatorspostgres "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/persistence/postgres"
	operatorsredis "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/redis"
	operatorsapp "github.com/laboquimica/kalium-review/internal/domains/operators/application"
	operatorports "github.com/laboquimica/kalium-review/internal/domains/operators/ports"
	returnsbackend "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/backend"
	returnsevents "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/events"
	returnsobs "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/observability"
	returnsworkflows "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/workflows"
	returnsapp "github.com/laboquimica/kalium-review/internal/domains/returns/application"
	returnports "github.com/laboquimica/kalium-review/internal/domains/returns/ports"
	"github.com/laboquimica/kalium-review/internal/platform/metrics"
	"github.com/laboquimica/kalium-review/internal/platform/migrations"
	platformobservability "github.com/laboquimica/kalium-review/internal/platform/observability"
	platformpostgres "github.com/laboquimica/kalium-review/internal/platform/postgres"
	platformredis "github.com/laboquimica/kalium-review/internal/platform/redis"
	platformtemporal "github.com/laboquimica/kalium-review/internal/platform/temporal"
)

const serviceName = "kalium-review-api"

// Run boots the review console API with observability, sessions and decision workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	kaliumClient, err := kalium.NewClient(cfg.KaliumAPIURL,
		kalium.WithTimeout(cfg.KaliumTimeout),
		kalium.WithObserver(metrics.BackendCalls{}),
	)
	if err != nil {
		return fmt.Errorf("failed to build kalium client: %w", err)
	}
	backend := returnsbackend.NewKalium(kaliumClient)

	decisions, closeDecisions := buildDecisions(cfg, instruments, backend)
	defer closeDecisions()
	publisher, closePublisher := buildPublisher(cfg, logger)
	defer closePublisher()
	sessionStore, closeSessions, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	coreReviews := returnsapp.NewService(backend,
		returnsapp.WithDecisionOrchestrator(decisions),
		returnsapp.WithEvents(publisher),
		returnsapp.WithLogger(logger),
		returnsapp.WithViewTTL(cfg.ReviewViewTTL),
		returnsapp.WithNotFoundRedirect(cfg.RedirectPath, cfg.RedirectDelay),
		returnsapp.WithViewCountObserver(func(n int) { metrics.OpenReviewViews.Set(float64(n)) }),
	)
	reviews := returnsobs.New(
		coreReviews,
		returnsobs.WithLogger(logger),
		returnsobs.WithTracer(instruments.Tracer("internal.returns.application")),
		returnsobs.WithMeter(instruments.Meter("internal.returns.application")),
	)
	operators := operatorsobs.New(
		operatorsapp.NewService(
			operatorsbackend.NewAuthenticator(kaliumClient),
			sessionStore,
			operatorsapp.WithSessionTTL(cfg.SessionTTL),
		),
		operatorsobs.WithLogger(logger),
		operatorsobs.WithTracer(instruments.Tracer("internal.operators.application")),
		operatorsobs.WithMeter(instruments.Meter("internal.operators.application")),
	)

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), corsMiddleware(cfg.CORSAllowedOrigins))
	router = reviewserver.NewRouterWithGinEngine(router, reviewserver.ApiHandleFunctions{
		SessionAPI: reviewserver.NewSessionAPI(operators),
		ReviewAPI:  reviewserver.NewReviewAPI(reviews),
		Sessions:   operators,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("review console API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("review console API exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		logger.Info("shutting down review console API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func buildDecisions(cfg Config, instruments *platformobservability.Instruments, backend returnports.Backend) (returnports.DecisionOrchestrator, func()) {
	logger := instruments.Logger
	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
		Tracer:    instruments.Tracer("temporal-client"),
		Logger:    logger,
	})
	if err != nil {
		logger.Warn("Temporal workflows unavailable, applying decisions inline", slog.String("error", err.Error()))
		return returnsworkflows.NewInlineDecisions(backend), func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return returnsworkflows.NewTemporalDecisions(temporalClient,
		returnsworkflows.WithDecisionTimeout(cfg.KaliumTimeout+returnsworkflows.DefaultDecisionTimeout),
	), temporalClient.Close
}

func buildPublisher(cfg Config, logger *slog.Logger) (returnports.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, logging review events")
		return returnsevents.NewLogPublisher(logger), func() {}
	}
	publisher, err := returnsevents.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		logger.Warn("failed to configure kafka, logging review events", slog.String("error", err.Error()))
		return returnsevents.NewLogPublisher(logger), func() {}
	}
	logger.Info("review events published to kafka", slog.String("topic", cfg.KafkaTopic))
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close kafka writer", slog.String("error", err.Error()))
		}
	}
}

func buildSessionStore(ctx context.Context, cfg Config, logger *slog.Logger) (operatorports.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case SessionBackendPostgres:
		db, cleanup, err := platformpostgres.ConnectWithCleanup(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect session postgres: %w", err)
		}
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate session schema: %w", err)
		}
		logger.Info("operator sessions stored in postgres")
		return operatorspostgres.NewSessionStore(db), cleanup, nil
	case SessionBackendRedis:
		client, err := platformredis.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("connect session redis: %w", err)
		}
		logger.Info("operator sessions stored in redis", slog.String("addr", cfg.RedisAddr))
		return operatorsredis.NewSessionStore(client), func() { _ = client.Close() }, nil
	default:
		logger.Info("operator sessions stored in memory")
		return operatorsmemory.NewSessionStore(), func() {}, nil
	}
}
