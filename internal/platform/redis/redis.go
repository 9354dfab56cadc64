package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
)

// Connect dials Redis at addr and verifies connectivity.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		PoolSize: 20,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// OncePerInterval runs fn at most once per interval across every process
// sharing key. After a successful run the lock is left to expire so that a
// later caller within the same interval is skipped; a failed run releases it
// so the next caller may retry. It reports false when fn was skipped.
func OncePerInterval(ctx context.Context, client *goredis.Client, key string, interval time.Duration, logger *slog.Logger, fn func(context.Context) error) (bool, error) {
	lock, err := redislock.New(client).Obtain(ctx, key, interval, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	if err := fn(ctx); err != nil {
		if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil && logger != nil {
			logger.Warn("failed to release redis lock", slog.String("key", key), slog.String("error", releaseErr.Error()))
		}
		return true, err
	}
	return true, nil
}
