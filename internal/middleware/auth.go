package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/constants"
	apierrors "github.com/spge/groundcheck/internal/errors"
	"github.com/spge/groundcheck/internal/groundcheck"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(constants.ContextKeyUserID).(string)

		if !ok || userID == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID and role in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		if role, ok := session.Get(constants.ContextKeyUserRole).(string); ok {
			c.Set(constants.ContextKeyUserRole, groundcheck.Role(role))
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := GetUserRole(c); role != groundcheck.RoleAdmin {
			apierrors.Forbidden(c, "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetUserRole retrieves the current user's role from context
func GetUserRole(c *gin.Context) (groundcheck.Role, bool) {
	role, exists := c.Get(constants.ContextKeyUserRole)
	if !exists {
		return "", false
	}
	r, ok := role.(groundcheck.Role)
	return r, ok
}
