package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/DhavalSuthar-24/clubhub/config"
	"github.com/DhavalSuthar-24/clubhub/internal/auth"
	"github.com/DhavalSuthar-24/clubhub/internal/directory"
	"github.com/DhavalSuthar-24/clubhub/internal/event"
	"github.com/DhavalSuthar-24/clubhub/internal/membership"
	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/internal/news"
	"github.com/DhavalSuthar-24/clubhub/internal/push"
	"github.com/DhavalSuthar-24/clubhub/internal/session"
	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/rmiddleware"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Config    *config.Config
	Log       *slog.Logger
	Provider  auth.Provider
	Profiles  user.Repository
	Teams     team.Repository
	Events    event.Repository
	News      news.Repository
	Hub       *session.Hub
	Engine    *membership.Engine
	Directory *directory.Directory
}

func SetupRoutes(d Deps) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{d.Config.App.FrontendURL}
	corsConfig.AddAllowHeaders("Authorization")
	if d.Config.App.Env == "development" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "clubhub", "docs": "/swagger/index.html"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": d.Hub.Len()})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authn := middleware.AuthMiddleware(d.Config.JWT.AccessTokenSecret)
	admin := rmiddleware.AdminMiddleware(d.Profiles)
	staff := rmiddleware.ManagerOrAdminMiddleware(d.Profiles)

	// API routes
	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, d.Provider, d.Profiles, d.Engine, d.Config.JWT.AccessTokenSecret, d.Log)
	session.RegisterSessionRoutes(api, d.Hub, authn)
	directory.RegisterDirectoryRoutes(api, d.Directory, authn, admin)
	team.TeamRoutes(api, d.Teams, d.Profiles, d.Profiles, authn)
	membership.RegisterMembershipRoutes(api, d.Engine, d.Teams, d.Profiles, authn)
	push.RegisterPushRoutes(api, d.Profiles, authn)
	event.RegisterEventRoutes(api, d.Events, authn, staff)
	news.RegisterNewsRoutes(api, d.News, authn, staff)

	return r
}
