package news

import (
	"github.com/gin-gonic/gin"
)

func RegisterNewsRoutes(router *gin.RouterGroup, repo Repository, auth, staff gin.HandlerFunc) {
	newsController := NewNewsController(repo)

	news := router.Group("/news")
	{
		news.GET("", newsController.ListNews)
		news.GET("/:news_id", newsController.GetNews)
		news.POST("", auth, staff, newsController.CreateNews)
	}
}
