package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
)

const (
	RequestIDKey    = "requestID"
	RequestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// RequestID assigns a fresh uuid to every request. Incoming X-Request-ID
// headers are attacker-controlled and ignored.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := uuid.NewString()
		c.Set(RequestIDKey, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Set(loggerKey, logger.WithFields(logrus.Fields{"request_id": rid}))
		c.Next()
	}
}

// GetRequestLogger returns the request-scoped entry, or the global logger.
func GetRequestLogger(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logger.Log()
}
