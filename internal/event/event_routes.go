package event

import (
	"github.com/gin-gonic/gin"
)

// RegisterEventRoutes mounts the event endpoints. auth authenticates the
// caller and staff additionally restricts writes to admins and managers.
func RegisterEventRoutes(router *gin.RouterGroup, repo Repository, auth, staff gin.HandlerFunc) {
	eventController := NewEventController(repo)

	events := router.Group("/events")
	{
		events.GET("", eventController.ListEvents)
		events.GET("/:event_id", eventController.GetEvent)
		events.POST("", auth, staff, eventController.CreateEvent)
	}
}
