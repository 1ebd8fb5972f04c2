package team

import (
	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/pkg/rmiddleware"
)

// TeamRoutes sets up team registration and review routes. The team listing
// lives with the directory.
func TeamRoutes(router *gin.RouterGroup, repo Repository, profiles ProfileStore, roles rmiddleware.ProfileReader, auth gin.HandlerFunc) {
	teamController := NewTeamController(repo, profiles)

	// Public team routes
	router.GET("/teams/:team_id", teamController.GetTeamByID)

	// Authenticated user routes
	authRoutes := router.Group("/")
	authRoutes.Use(auth)
	{
		authRoutes.POST("/teams", rmiddleware.AnyRoleMiddleware(roles), teamController.RegisterTeam)
		authRoutes.GET("/users/me/teams", rmiddleware.AnyRoleMiddleware(roles), teamController.GetMyTeams)
	}

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(auth)
	adminRoutes.Use(rmiddleware.AdminMiddleware(roles))
	{
		adminRoutes.PUT("/teams/:id/status", teamController.UpdateTeamStatus)
	}
}
