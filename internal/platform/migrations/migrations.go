package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the console schema. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&operatorSessionRecord{},
	)
}

// operatorSessionRecord mirrors the operators Postgres session store.
type operatorSessionRecord struct {
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

func (operatorSessionRecord) TableName() string { return "operator_sessions" }
