package reviewserver

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/laboquimica/kalium-review/internal/clients/http/kalium"
	operatorsapp "github.com/laboquimica/kalium-review/internal/domains/operators/application"
	operatordomain "github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	operatorports "github.com/laboquimica/kalium-review/internal/domains/operators/ports"
	apierrors "github.com/laboquimica/kalium-review/internal/shared/errors"
)

const (
	RequestIDHeader = apierrors.HeaderRequestID

	sessionKey = "reviewserver.session"
)

var errMissingToken = errors.New("missing bearer token")

// RequestID echoes the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(kalium.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequireSession resolves the bearer token into the operator session.
func RequireSession(sessions operatorports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respondServiceError(c, errors.Join(operatorsapp.ErrUnauthenticated, errMissingToken))
			c.Abort()
			return
		}
		session, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireScope rejects sessions that were not granted scope at login.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok || !slices.Contains(session.Scopes, scope) {
			respondProblem(c, apierrors.ErrForbidden.WithDetail("missing scope "+scope))
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) (*operatordomain.Session, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*operatordomain.Session)
	return session, ok && session != nil
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
