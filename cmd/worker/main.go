package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/laboquimica/kalium-review/internal/app/api"
	"github.com/laboquimica/kalium-review/internal/clients/http/kalium"
	returnsbackend "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/backend"
	"github.com/laboquimica/kalium-review/internal/platform/metrics"
	platformobservability "github.com/laboquimica/kalium-review/internal/platform/observability"
	platformtemporal "github.com/laboquimica/kalium-review/internal/platform/temporal"
	returnactivities "github.com/laboquimica/kalium-review/internal/platform/temporal/activities/returns"
	returnworkflows "github.com/laboquimica/kalium-review/internal/platform/temporal/workflows/returns"
)

func main() {
	ctx := context.Background()
	const serviceName = "kalium-review-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
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
		logger.Error("failed to build kalium client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	activities := returnactivities.NewActivities(returnsbackend.NewKalium(kaliumClient))

	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
		Tracer:    instruments.Tracer("temporal-worker"),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, returnworkflows.DecisionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(returnworkflows.DecisionWorkflow, workflow.RegisterOptions{Name: returnworkflows.DecisionWorkflowName})
	activities.Register(w)

	logger.Info("worker listening", slog.String("taskQueue", returnworkflows.DecisionTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
