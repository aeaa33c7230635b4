package middleware

import (
	"github.com/gin-gonic/gin"
)

// BannerConfig is the server fingerprint the honeypot presents.
type BannerConfig struct {
	Server    string
	PoweredBy string
}

// DefaultBanner looks like a stock reverse-proxied PHP backend.
func DefaultBanner() BannerConfig {
	return BannerConfig{Server: "nginx/1.18.0 (Ubuntu)", PoweredBy: "PHP/7.4.3"}
}

// DecoyHeaders sets a believable server banner plus the hardening headers a
// real deployment would send, so responses do not stand out as synthetic.
func DecoyHeaders(cfg BannerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Server != "" {
			c.Header("Server", cfg.Server)
		}
		if cfg.PoweredBy != "" {
			c.Header("X-Powered-By", cfg.PoweredBy)
		}
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
