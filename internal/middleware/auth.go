package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"market-service/internal/auth"
)

// AuthMiddleware verifies the bearer token and attaches the resolved user id
// to the request context. Handlers behind it can trust c.GetInt("userID").
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		userID, err := verifier.UserID(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
