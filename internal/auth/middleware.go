package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserKey holds the authenticated email in the gin context.
const ContextUserKey = "user_email"

// RequireBearer rejects requests without a valid "Authorization: Bearer"
// token with 403.
func RequireBearer(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token or expired token"})
			return
		}
		email, err := tm.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token or expired token"})
			return
		}
		c.Set(ContextUserKey, email)
		c.Next()
	}
}
