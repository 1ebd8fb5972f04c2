package session

import "github.com/gin-gonic/gin"

// RegisterSessionRoutes exposes the per-client session state. A token may
// only read the client instance it was issued for.
func RegisterSessionRoutes(router *gin.RouterGroup, hub *Hub, authMiddleware gin.HandlerFunc) {
	sessionController := NewSessionController(hub)

	sessions := router.Group("/session")
	sessions.Use(authMiddleware)
	{
		sessions.GET("/:client_id", sessionController.GetSession)
		sessions.GET("/:client_id/stream", sessionController.StreamSession)
	}
}
