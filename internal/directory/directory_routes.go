package directory

import (
	"github.com/gin-gonic/gin"
)

// RegisterDirectoryRoutes mounts the listings. Team listing is public; the
// player listing needs a signed-in user and stats an admin.
func RegisterDirectoryRoutes(router *gin.RouterGroup, dir *Directory, auth, admin gin.HandlerFunc) {
	directoryController := NewDirectoryController(dir)

	router.GET("/teams", directoryController.ListTeams)
	router.GET("/players", auth, directoryController.ListPlayers)
	router.GET("/admin/stats", auth, admin, directoryController.Stats)
}
