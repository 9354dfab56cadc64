package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	reviewserver "github.com/laboquimica/kalium-review/go"
)

// corsMiddleware lets the browser console call the API from its own origin.
// An empty allowlist refuses every cross-origin request.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	cfg.AddAllowMethods("PATCH")
	cfg.AddAllowHeaders("Authorization", "Accept", "X-Requested-With", reviewserver.RequestIDHeader)
	cfg.AddExposeHeaders(reviewserver.RequestIDHeader)
	cfg.AllowCredentials = true
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}
