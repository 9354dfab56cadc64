package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"github.com/laboquimica/kalium-review/internal/domains/returns/adapters/events"
	"github.com/laboquimica/kalium-review/internal/domains/returns/application"
)

const (
	SessionBackendMemory   = "memory"
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
)

// Config carries environment-driven settings for the console processes.
type Config struct {
	Port        string `validate:"required,numeric"`
	LogLevel    string `validate:"omitempty,oneof=debug info warn warning error"`
	Environment string

	CORSAllowedOrigins []string `validate:"dive,url"`

	KaliumAPIURL   string        `validate:"required,url"`
	KaliumTimeout  time.Duration `validate:"gt=0"`
	RedirectPath   string        `validate:"required,startswith=/"`
	RedirectDelay  time.Duration `validate:"gte=0"`
	ReviewViewTTL  time.Duration `validate:"gt=0"`
	SessionBackend string        `validate:"oneof=memory postgres redis"`
	SessionTTL     time.Duration `validate:"gt=0"`
	PostgresDSN    string        `validate:"required_if=SessionBackend postgres"`
	RedisAddr      string        `validate:"required_if=SessionBackend redis"`

	KafkaBrokers []string `validate:"dive,hostname_port"`
	KafkaTopic   string   `validate:"required"`

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	SessionPurgeInterval time.Duration `validate:"gt=0"`
}

// LoadConfig reads .env files when present, then the environment, applies defaults and validates.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		Port:               envDefault("PORT", "8081"),
		LogLevel:           strings.ToLower(envDefault("LOG_LEVEL", "info")),
		Environment:        envDefault("ENVIRONMENT", "local"),
		CORSAllowedOrigins: splitList(envDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		KaliumAPIURL:       envDefault("KALIUM_API_URL", "http://localhost:8080/api"),
		RedirectPath:       envDefault("NOT_FOUND_REDIRECT_PATH", application.DefaultRedirectPath),
		SessionBackend:     strings.ToLower(envDefault("SESSION_BACKEND", SessionBackendMemory)),
		PostgresDSN:        strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         envDefault("KAFKA_TOPIC", events.DefaultTopic),
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}

	var err error
	if cfg.KaliumTimeout, err = envDuration("KALIUM_API_TIMEOUT_SECONDS", time.Second, 10); err != nil {
		return Config{}, err
	}
	if cfg.RedirectDelay, err = envDuration("NOT_FOUND_REDIRECT_DELAY_MS", time.Millisecond, application.DefaultRedirectDelay.Milliseconds()); err != nil {
		return Config{}, err
	}
	if cfg.ReviewViewTTL, err = envDuration("REVIEW_VIEW_TTL_MINUTES", time.Minute, 15); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = envDuration("SESSION_TTL_HOURS", time.Hour, 24); err != nil {
		return Config{}, err
	}
	if cfg.SessionPurgeInterval, err = envDuration("SESSION_PURGE_INTERVAL_MINUTES", time.Minute, 30); err != nil {
		return Config{}, err
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, describeValidation(err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func envDuration(key string, unit time.Duration, fallback int64) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(fallback) * unit, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return time.Duration(n) * unit, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
