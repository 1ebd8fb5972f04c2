package auth

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
)

func RegisterAuthRoutes(router *gin.RouterGroup, provider Provider, profiles ProfileStore, joins JoinRequester, jwtSecret string, log *slog.Logger) {
	authController := NewAuthController(provider, profiles, joins, log)

	// Public routes
	authPublic := router.Group("/auth")
	{
		authPublic.POST("/register", authController.Register)
		authPublic.POST("/login", authController.Login)
		authPublic.POST("/password/forgot", authController.ForgotPassword)
		authPublic.POST("/password/reset", authController.ResetPassword)
	}

	// Authenticated routes (protected by auth middleware)
	authProtected := router.Group("/auth")
	authProtected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		authProtected.GET("/me", authController.GetProfile)
		authProtected.PUT("/me", authController.UpdateProfile)
		authProtected.POST("/logout", authController.Logout)
	}
}
