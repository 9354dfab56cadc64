package mapper

import (
	"time"

	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
)

// LoginRequest is the body of POST /session.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Operator is the HTTP representation of the logged-in operator.
type Operator struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Admin       bool   `json:"admin"`
}

// Session is returned on login.
type Session struct {
	Token     string    `json:"token,omitempty"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	Scopes    []string  `json:"scopes"`
	Operator  Operator  `json:"operator"`
}

// ToCredentials maps the login body.
func ToCredentials(req LoginRequest) domain.Credentials {
	return domain.Credentials{Email: req.Email, Password: req.Password}
}

// FromSession maps a stored session.
func FromSession(session *domain.Session) Session {
	if session == nil {
		return Session{}
	}
	scopes := session.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return Session{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
		Scopes:    scopes,
		Operator:  FromOperator(session.Operator),
	}
}

// FromOperator maps the operator profile.
func FromOperator(op domain.Operator) Operator {
	return Operator{
		ID:          op.ID,
		FirstName:   op.FirstName,
		LastName:    op.LastName,
		DisplayName: op.DisplayName(),
		Email:       op.Email,
		Role:        op.Role,
		Admin:       op.IsAdmin(),
	}
}
