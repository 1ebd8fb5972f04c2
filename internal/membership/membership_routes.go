package membership

import (
	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/pkg/rmiddleware"
)

// RegisterMembershipRoutes mounts the workflow endpoints. auth must
// authenticate the caller; role checks are applied per route here.
func RegisterMembershipRoutes(router *gin.RouterGroup, engine *Engine, teams TeamReader, profiles rmiddleware.ProfileReader, auth gin.HandlerFunc) {
	membershipController := NewMembershipController(engine, teams)

	authRoutes := router.Group("/")
	authRoutes.Use(auth)
	{
		// Players
		authRoutes.POST("/teams/:team_id/requests", rmiddleware.PlayerMiddleware(profiles), membershipController.CreateJoinRequest)
		authRoutes.GET("/users/me/requests", rmiddleware.AnyRoleMiddleware(profiles), membershipController.MyRequests)

		// Managers and admins; team ownership is checked in the handlers
		manage := rmiddleware.ManagerOrAdminMiddleware(profiles)
		authRoutes.GET("/teams/:team_id/requests", manage, membershipController.ListTeamRequests)
		authRoutes.POST("/teams/:team_id/invitations", manage, membershipController.CreateInvitation)
		authRoutes.DELETE("/teams/:team_id/players/:player_id", manage, membershipController.RemovePlayer)
		authRoutes.DELETE("/teams/:team_id", manage, membershipController.DeleteTeam)

		// Invited players accept invitations, managers answer join requests
		decide := rmiddleware.AnyRoleMiddleware(profiles)
		authRoutes.POST("/requests/:request_id/approve", decide, membershipController.ApproveRequest)
		authRoutes.POST("/requests/:request_id/reject", decide, membershipController.RejectRequest)
	}
}
