package server

import (
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/wavescrub/wavescrub/internal/config"
)

// setupSecurityMiddleware applies security headers. The service emits
// only JSON and PNG, so the CSP can be locked down hard; HSTS is only
// meaningful behind TLS and stays off outside production.
func setupSecurityMiddleware(router *gin.Engine, cfg *config.Config) {
	hsts := int64(0)
	if cfg.Env == config.EnvProduction {
		hsts = int64(cfg.HSTSMaxAge)
	}

	router.Use(secure.New(secure.Config{
		STSSeconds:            hsts,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: config.BuildCSP(cfg.CSPMode),
	}))
}
