package reviewserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	operatordomain "github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	operatorports "github.com/laboquimica/kalium-review/internal/domains/operators/ports"
	"github.com/laboquimica/kalium-review/internal/platform/metrics"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Scope is the session scope the route requires. Empty means public.
	Scope string
}

// ApiHandleFunctions groups the API handlers served by the console.
type ApiHandleFunctions struct {
	SessionAPI SessionAPI
	ReviewAPI  ReviewAPI
	// Sessions resolves bearer tokens for protected routes.
	Sessions operatorports.Service
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the console routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(RequestID())
	router.GET("/healthz", Healthz)
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	protected := v1.Group("", RequireSession(handleFunctions.Sessions))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		if route.Scope == "" {
			v1.Handle(route.Method, route.Pattern, route.HandlerFunc)
			continue
		}
		protected.Handle(route.Method, route.Pattern, RequireScope(route.Scope), route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"Login",
			http.MethodPost,
			"/session",
			handleFunctions.SessionAPI.Login,
			"",
		},
		{
			"Logout",
			http.MethodDelete,
			"/session",
			handleFunctions.SessionAPI.Logout,
			"",
		},
		{
			"CurrentSession",
			http.MethodGet,
			"/session",
			handleFunctions.SessionAPI.Current,
			operatordomain.ScopeReturnsRead,
		},
		{
			"OpenReview",
			http.MethodGet,
			"/returns/:returnId/review",
			handleFunctions.ReviewAPI.OpenReview,
			operatordomain.ScopeReturnsRead,
		},
		{
			"ReloadReview",
			http.MethodPost,
			"/returns/:returnId/review/reload",
			handleFunctions.ReviewAPI.ReloadReview,
			operatordomain.ScopeReturnsRead,
		},
		{
			"CloseReview",
			http.MethodDelete,
			"/returns/:returnId/review",
			handleFunctions.ReviewAPI.CloseReview,
			operatordomain.ScopeReturnsRead,
		},
		{
			"ReviewItem",
			http.MethodPost,
			"/returns/:returnId/items/:itemId/review",
			handleFunctions.ReviewAPI.ReviewItem,
			operatordomain.ScopeReturnsReview,
		},
		{
			"ApproveReturn",
			http.MethodPost,
			"/returns/:returnId/approve",
			handleFunctions.ReviewAPI.ApproveReturn,
			operatordomain.ScopeReturnsDecide,
		},
		{
			"RejectReturn",
			http.MethodPost,
			"/returns/:returnId/reject",
			handleFunctions.ReviewAPI.RejectReturn,
			operatordomain.ScopeReturnsDecide,
		},
	}
}
