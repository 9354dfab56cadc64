package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

// KeyPrefix namespaces session keys.
const KeyPrefix = "kalium:review:session:"

// SessionStore keeps sessions in Redis, expiring keys with the session.
type SessionStore struct {
	client goredis.Cmdable
	now    func() time.Time
}

func NewSessionStore(client goredis.Cmdable) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

type sessionPayload struct {
	OperatorID int64     `json:"operatorId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Scopes     []string  `json:"scopes"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if s == nil || s.client == nil {
		return errors.New("redis session store not configured")
	}
	token := strings.TrimSpace(session.Token)
	if token == "" {
		return errors.New("session token is required")
	}
	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, token)
		}
	}
	value, err := json.Marshal(sessionPayload{
		OperatorID: session.Operator.ID,
		FirstName:  session.Operator.FirstName,
		LastName:   session.Operator.LastName,
		Email:      session.Operator.Email,
		Role:       session.Operator.Role,
		Scopes:     session.Scopes,
		ExpiresAt:  session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, KeyPrefix+token, value, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("redis session store not configured")
	}
	token = strings.TrimSpace(token)
	raw, err := s.client.Get(ctx, KeyPrefix+token).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ports.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{
		Token: token,
		Operator: domain.Operator{
			ID:        payload.OperatorID,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Email:     payload.Email,
			Role:      payload.Role,
		},
		Scopes:    payload.Scopes,
		ExpiresAt: payload.ExpiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if s == nil || s.client == nil {
		return errors.New("redis session store not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, KeyPrefix+token).Err()
}

var _ ports.SessionStore = (*SessionStore)(nil)
