package handlers

import (
	"net/http"

	"github.com/7FyD/travel-manager-api/services"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key holding the authenticated user ID.
const ContextUserID = "userID"

// RequireAuth reads the access-token cookie and rejects the request when it
// is missing or invalid. Auth endpoints themselves are not behind it.
func RequireAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(services.AccessCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided"})
			return
		}

		claims, err := tokens.Parse(raw, "access")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired access token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}
