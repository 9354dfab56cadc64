package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

// SessionStore persists operator sessions in PostgreSQL.
type SessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

type sessionRecord struct {
	Token      string         `gorm:"primaryKey;column:token;size:512"`
	OperatorID int64          `gorm:"column:operator_id;index"`
	FirstName  string         `gorm:"column:first_name"`
	LastName   string         `gorm:"column:last_name"`
	Email      string         `gorm:"column:email"`
	Role       string         `gorm:"column:role;size:64"`
	Scopes     pq.StringArray `gorm:"column:scopes;type:text[]"`
	ExpiresAt  *time.Time     `gorm:"column:expires_at;index"`
	CreatedAt  time.Time      `gorm:"column:created_at;index"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "operator_sessions" }

// Save upserts a session keyed by token.
func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	token := strings.TrimSpace(session.Token)
	if token == "" {
		return errors.New("session token is required")
	}
	rec := sessionRecord{
		Token:      token,
		OperatorID: session.Operator.ID,
		FirstName:  session.Operator.FirstName,
		LastName:   session.Operator.LastName,
		Email:      session.Operator.Email,
		Role:       session.Operator.Role,
		Scopes:     pq.StringArray(session.Scopes),
	}
	if !session.ExpiresAt.IsZero() {
		expiry := session.ExpiresAt
		rec.ExpiresAt = &expiry
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"operator_id", "first_name", "last_name", "email", "role", "scopes", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

// Get loads a session by token.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec sessionRecord
	err := s.db.WithContext(ctx).Where("token = ?", strings.TrimSpace(token)).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	session := &domain.Session{
		Token: rec.Token,
		Operator: domain.Operator{
			ID:        rec.OperatorID,
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Email:     rec.Email,
			Role:      rec.Role,
		},
		Scopes: []string(rec.Scopes),
	}
	if rec.ExpiresAt != nil {
		session.ExpiresAt = *rec.ExpiresAt
	}
	return session, nil
}

// Delete removes a session by token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "token = ?", token).Error
}

// PurgeExpired removes all expired sessions and reports how many were deleted.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).Delete(&sessionRecord{})
	return res.RowsAffected, res.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

var _ ports.SessionStore = (*SessionStore)(nil)
