package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/laboquimica/kalium-review/internal/app/api"
	operatorspostgres "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/persistence/postgres"
	"github.com/laboquimica/kalium-review/internal/platform/migrations"
	platformpostgres "github.com/laboquimica/kalium-review/internal/platform/postgres"
	platformredis "github.com/laboquimica/kalium-review/internal/platform/redis"
)

const purgeLockKey = "kalium:review:session-purger"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN not set; cannot purge sessions")
	}
	db, cleanup, err := platformpostgres.ConnectWithCleanup(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer cleanup()
	if err := migrations.Run(db); err != nil {
		log.Fatalf("failed to migrate session schema: %v", err)
	}
	store := operatorspostgres.NewSessionStore(db)

	purge := func(ctx context.Context) error {
		removed, err := store.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		logger.Info("session purge completed", slog.Int64("removed", removed))
		return nil
	}

	if cfg.RedisAddr == "" {
		if err := purge(ctx); err != nil {
			log.Fatalf("failed to purge sessions: %v", err)
		}
		return
	}

	client, err := platformredis.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer client.Close()
	ran, err := platformredis.OncePerInterval(ctx, client, purgeLockKey, cfg.SessionPurgeInterval, logger, purge)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	if !ran {
		logger.Info("sessions already purged this interval, skipping")
	}
}
