package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/services"
)

// Context keys set by AdminAuth.
const (
	SubjectKey = "subject"
	RoleKey    = "role"
)

// TokenValidator verifies operator session tokens.
type TokenValidator interface {
	ValidateToken(raw string) (*services.Claims, error)
}

// AdminAuth requires a valid "Authorization: Bearer <token>" header.
func AdminAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authorization header required"})
			return
		}
		claims, err := auth.ValidateToken(strings.TrimSpace(raw))
		if err != nil {
			GetRequestLogger(c).WithError(err).Warn("rejected admin token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid or expired token"})
			return
		}
		c.Set(SubjectKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role differs from role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "Forbidden"})
			return
		}
		c.Next()
	}
}
