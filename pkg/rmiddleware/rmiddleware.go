package rmiddleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
)

const (
	UserRoleKey    = "user_role"
	UserProfileKey = "user_profile"
)

// ProfileReader loads the profile that carries a user's role.
type ProfileReader interface {
	GetProfile(ctx context.Context, id string) (*user.Profile, error)
}

// RoleMiddleware lets the request through only when the authenticated user's
// profile has one of the required roles. It must run after AuthMiddleware.
func RoleMiddleware(profiles ProfileReader, requiredRoles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.GetUserIDFromContext(c)
		if err != nil {
			responses.Unauthorized(c, "Unauthorized: "+err.Error())
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), userID)
		if err != nil {
			responses.SendAppError(c, err)
			return
		}
		if profile == nil {
			responses.Forbidden(c, "User profile not found")
			return
		}

		if len(requiredRoles) > 0 && !slices.Contains(requiredRoles, profile.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":    "error",
				"message":   "You don't have permission to access this resource",
				"code":      http.StatusForbidden,
				"required":  requiredRoles,
				"user_role": profile.Role,
			})
			return
		}

		// Add role to context for downstream handlers
		c.Set(UserRoleKey, profile.Role)
		c.Set(UserProfileKey, profile)
		c.Next()
	}
}

// AdminMiddleware is a convenience middleware for admin-only access
func AdminMiddleware(profiles ProfileReader) gin.HandlerFunc {
	return RoleMiddleware(profiles, user.RoleAdmin)
}

// ManagerOrAdminMiddleware is a convenience middleware for manager or admin access
func ManagerOrAdminMiddleware(profiles ProfileReader) gin.HandlerFunc {
	return RoleMiddleware(profiles, user.RoleManager, user.RoleAdmin)
}

// PlayerMiddleware is a convenience middleware for player-only access
func PlayerMiddleware(profiles ProfileReader) gin.HandlerFunc {
	return RoleMiddleware(profiles, user.RolePlayer)
}

// AnyRoleMiddleware loads the caller's profile without restricting the role.
func AnyRoleMiddleware(profiles ProfileReader) gin.HandlerFunc {
	return RoleMiddleware(profiles)
}

// CurrentProfile returns the profile loaded by RoleMiddleware.
func CurrentProfile(c *gin.Context) *user.Profile {
	if v, ok := c.Get(UserProfileKey); ok {
		if p, ok := v.(*user.Profile); ok {
			return p
		}
	}
	return nil
}
