package reviewserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sessionhttpmapper "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/http/mapper"
	operatorports "github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

// SessionAPI exposes operator login and logout.
type SessionAPI struct {
	service operatorports.Service
}

// NewSessionAPI creates a SessionAPI backed by the operator service.
func NewSessionAPI(service operatorports.Service) SessionAPI {
	return SessionAPI{service: service}
}

// Post /api/v1/session
// Logs an operator into the console
func (api *SessionAPI) Login(c *gin.Context) {
	var payload sessionhttpmapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	session, err := api.service.Login(c.Request.Context(), sessionhttpmapper.ToCredentials(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionhttpmapper.FromSession(session))
}

// Delete /api/v1/session
// Ends the operator session
func (api *SessionAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/v1/session
// Returns the current operator
func (api *SessionAPI) Current(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("no active session"))
		return
	}
	out := sessionhttpmapper.FromSession(session)
	out.Token = ""
	c.JSON(http.StatusOK, out)
}
