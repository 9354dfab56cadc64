//go:build integration

package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) *goredis.Client {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := Connect(ctx, fmt.Sprintf("%s:%s", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestOncePerInterval_SkipsSecondRunWithinInterval(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := setupRedisContainer(t)
	ctx := context.Background()

	runs := 0
	purge := func(context.Context) error {
		runs++
		return nil
	}

	ran, err := OncePerInterval(ctx, client, "purge-test", time.Minute, nil, purge)
	require.NoError(t, err)
	require.True(t, ran)

	ran, err = OncePerInterval(ctx, client, "purge-test", time.Minute, nil, purge)
	require.NoError(t, err)
	require.False(t, ran)
	require.Equal(t, 1, runs)
}

func TestOncePerInterval_FailedRunAllowsRetry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := setupRedisContainer(t)
	ctx := context.Background()
	boom := errors.New("purge failed")

	ran, err := OncePerInterval(ctx, client, "purge-retry", time.Minute, nil, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.True(t, ran)

	ran, err = OncePerInterval(ctx, client, "purge-retry", time.Minute, nil, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.True(t, ran)
}
