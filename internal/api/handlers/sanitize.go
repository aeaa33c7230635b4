package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/api/middleware"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/util"
)

const maxLoggedField = 256

// logSafe prepares attacker-supplied text for a log field.
func logSafe(s string) string {
	return util.Truncate(util.SanitizeForLog(s), maxLoggedField)
}

// GetLogger returns the request-scoped logger.
func GetLogger(c *gin.Context) *logrus.Entry {
	return middleware.GetRequestLogger(c)
}
