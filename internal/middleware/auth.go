package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
	"github.com/DhavalSuthar-24/clubhub/pkg/token"
)

const (
	AuthUserIDKey   = "auth_user_id"
	AuthClientIDKey = "auth_client_id"
	AuthEmailKey    = "auth_email"
)

// AuthMiddleware requires a valid bearer access token and stores the identity
// it names on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Unauthorized(c, "Authorization header is required")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			responses.Unauthorized(c, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			responses.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(AuthUserIDKey, claims.UserID)
		c.Set(AuthClientIDKey, claims.ClientID)
		c.Set(AuthEmailKey, claims.Email)
		c.Next()
	}
}

// GetUserIDFromContext extracts the user ID from the context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID := c.GetString(AuthUserIDKey)
	if userID == "" {
		return "", errors.New("user ID not found in context")
	}
	return userID, nil
}

// GetClientIDFromContext returns the client instance the token was issued to.
func GetClientIDFromContext(c *gin.Context) string {
	return c.GetString(AuthClientIDKey)
}
