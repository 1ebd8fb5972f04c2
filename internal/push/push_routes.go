package push

import "github.com/gin-gonic/gin"

func RegisterPushRoutes(router *gin.RouterGroup, profiles TokenWriter, auth gin.HandlerFunc) {
	pushController := NewPushController(profiles)
	router.PUT("/users/me/push-token", auth, pushController.RegisterToken)
}
