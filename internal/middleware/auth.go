package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminUsernameKey is the gin context key holding the authenticated admin.
const AdminUsernameKey = "adminUsername"

// TokenAuthenticator resolves a bearer token to the admin username.
type TokenAuthenticator interface {
	Authenticate(token string) (string, error)
}

// Auth requires a valid bearer access token.
func Auth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authentication required."})
			return
		}

		username, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid or expired token."})
			return
		}

		c.Set(AdminUsernameKey, username)
		c.Next()
	}
}
