package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"reminders-lite/internal/auth"
)

const (
	userIDContextKey = "userID"
	UserIDHeader     = "User-ID"
)

func UserIDFromContext(c *gin.Context) (int64, bool) {
	userID, ok := c.Get(userIDContextKey)
	if !ok {
		return 0, false
	}
	value, ok := userID.(int64)
	return value, ok && value > 0
}

// RequireAuth accepts a bearer token and, when the client also sends a
// User-ID header, requires it to name the token's user.
func RequireAuth(cfg auth.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
			return
		}

		claims, err := auth.VerifyToken(parts[1], cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
			return
		}

		if raw := c.GetHeader(UserIDHeader); raw != "" {
			headerID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || headerID != claims.UserID {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User-ID does not match token"})
				return
			}
		}

		c.Set(userIDContextKey, claims.UserID)
		c.Next()
	}
}
