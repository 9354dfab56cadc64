package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "8081", cfg.Port)
	require.Equal(t, "http://localhost:8080/api", cfg.KaliumAPIURL)
	require.Equal(t, 10*time.Second, cfg.KaliumTimeout)
	require.Equal(t, "/devoluciones", cfg.RedirectPath)
	require.Equal(t, 2*time.Second, cfg.RedirectDelay)
	require.Equal(t, 15*time.Minute, cfg.ReviewViewTTL)
	require.Equal(t, SessionBackendMemory, cfg.SessionBackend)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("KALIUM_API_URL", "https://kalium.example.edu/api")
	t.Setenv("KALIUM_API_TIMEOUT_SECONDS", "3")
	t.Setenv("NOT_FOUND_REDIRECT_DELAY_MS", "500")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("TEMPORAL_DISABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.KaliumTimeout)
	require.Equal(t, 500*time.Millisecond, cfg.RedirectDelay)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.TemporalDisabled)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REVIEW_VIEW_TTL_MINUTES=5\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("REVIEW_VIEW_TTL_MINUTES") })

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cfg.ReviewViewTTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("postgres backend needs a DSN", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "postgres")
		_, err := LoadConfig()
		require.ErrorContains(t, err, "PostgresDSN")
	})
	t.Run("unknown session backend", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "etcd")
		_, err := LoadConfig()
		require.Error(t, err)
	})
	t.Run("negative timeout", func(t *testing.T) {
		t.Setenv("KALIUM_API_TIMEOUT_SECONDS", "-1")
		_, err := LoadConfig()
		require.ErrorContains(t, err, "KALIUM_API_TIMEOUT_SECONDS")
	})
	t.Run("cors origins must be URLs", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "localhost")
		_, err := LoadConfig()
		require.ErrorContains(t, err, "CORSAllowedOrigins")
	})
	t.Run("redirect must be a path", func(t *testing.T) {
		t.Setenv("NOT_FOUND_REDIRECT_PATH", "devoluciones")
		_, err := LoadConfig()
		require.Error(t, err)
	})
}
