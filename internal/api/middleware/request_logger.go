package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request. Path and User-Agent come from
// attackers and are sanitized first.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		GetRequestLogger(c).WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    SanitizePath(c.Request.URL.Path),
			"ua":      SanitizeValue(c.Request.UserAgent()),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}).Info("handled request")
	}
}
