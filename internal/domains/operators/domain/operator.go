package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyEmail    = errors.New("email is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
)

// Operator is the authenticated user driving the console.
type Operator struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Role      string
}

// IsAdmin reports whether the operator may review and decide returns.
// Backend roles are ADMIN, ADMINISTRADOR, INSTRUCTOR and ESTUDIANTE.
func (o Operator) IsAdmin() bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(o.Role)), "ADMIN")
}

const (
	ScopeReturnsRead   = "returns:read"
	ScopeReturnsReview = "returns:review"
	ScopeReturnsDecide = "returns:decide"
)

// Scopes lists what the console lets the operator do.
func (o Operator) Scopes() []string {
	if o.IsAdmin() {
		return []string{ScopeReturnsRead, ScopeReturnsReview, ScopeReturnsDecide}
	}
	return []string{ScopeReturnsRead}
}

// DisplayName joins first and last name, falling back to the email.
func (o Operator) DisplayName() string {
	if name := strings.TrimSpace(o.FirstName + " " + o.LastName); name != "" {
		return name
	}
	return o.Email
}

// Credentials is the login payload.
type Credentials struct {
	Email    string
	Password string
}

// Validate trims and checks the credentials.
func (c *Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(c.Password) == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Session binds an opaque token to an operator until ExpiresAt.
type Session struct {
	Token    string
	Operator Operator
	// Scopes are fixed at login.
	Scopes    []string
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
