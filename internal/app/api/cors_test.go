package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newCORSRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware(origins))
	router.POST("/api/v1/returns/:returnId/approve", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCORS_AllowsConsoleOrigin(t *testing.T) {
	router := newCORSRouter("http://localhost:5173")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/returns/7/approve", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	router := newCORSRouter("http://localhost:5173")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/returns/7/approve", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
