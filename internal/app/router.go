package app

import (
	"escape_room_backend/docs"
	"escape_room_backend/internal/config"
	"escape_room_backend/internal/middleware"
	"escape_room_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, c.auth.AuthService))
	{
		a.registerPlayerRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.GET("/stories", c.story.ListStories)
	}
}

func (a *App) registerPlayerRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/auth/logout", c.auth.Logout)
	group.GET("/profile", c.auth.Profile)

	stories := group.Group("/stories")
	{
		stories.GET("/:id", c.story.GetStory)
		stories.GET("/:id/access", c.story.CheckAccess)
		stories.POST("/:id/buy", c.story.BuyStory)
		stories.POST("/:id/start", c.story.StartStory)
	}

	attempts := group.Group("/attempts")
	{
		attempts.GET("/:id", c.attempt.GetAttempt)
		attempts.GET("/:id/hints", c.attempt.GetHints)
		attempts.POST("/:id/check_password", c.attempt.CheckPassword)
	}
}
