package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/utils"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins     []string
	AllowOriginFunc  func(origin string) bool
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows browser extension origins only. Web pages share
// the loopback address with the extension and must not reach the agent.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOriginFunc: utils.IsExtensionOrigin,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Content-Length", "Accept", "Origin", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
}

// ExtensionCORSConfig restricts CORS to exactly the given origins. With no
// origins it is DefaultCORSConfig.
func ExtensionCORSConfig(origins ...string) CORSConfig {
	cfg := DefaultCORSConfig()
	var allowed []string
	for _, o := range origins {
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) > 0 {
		cfg.AllowOrigins = allowed
		cfg.AllowOriginFunc = nil
		cfg.AllowCredentials = true
	}
	return cfg
}

// CORS creates a CORS middleware with the provided configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:           cfg.AllowOrigins,
		AllowOriginFunc:        cfg.AllowOriginFunc,
		AllowMethods:           cfg.AllowMethods,
		AllowHeaders:           cfg.AllowHeaders,
		ExposeHeaders:          cfg.ExposeHeaders,
		AllowCredentials:       cfg.AllowCredentials,
		AllowBrowserExtensions: true,
		MaxAge:                 cfg.MaxAge,
	})
}
