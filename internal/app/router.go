package app

import (
	"github.com/Erkezh/studypoint-edu/docs"
	"github.com/Erkezh/studypoint-edu/internal/config"
	"github.com/Erkezh/studypoint-edu/internal/middleware"
	"github.com/Erkezh/studypoint-edu/pkg/monitoring"
	"github.com/Erkezh/studypoint-edu/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 练习接口
	practice := router.Group("/api/practice")
	practice.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	a.registerPracticeRoutes(practice, c, cfg)
}

func (a *App) registerPracticeRoutes(rg *gin.RouterGroup, c *controllers, cfg *config.Config) {
	idempotent := a.idempotency(cfg)
	submitLimit := security.RateLimiter(cfg.Practice.SubmitRateLimit, cfg.Practice.SubmitRateWindow(), middleware.LearnerKey)

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", idempotent, c.practice.StartSession)
		sessions.GET("/:id", c.practice.GetSession)
		sessions.POST("/:id/next", c.practice.NextQuestion)
		sessions.POST("/:id/submit", submitLimit, idempotent, c.practice.Submit)
		sessions.POST("/:id/heartbeat", c.practice.Heartbeat)
		sessions.POST("/:id/finish", idempotent, c.practice.Finish)
		sessions.GET("/:id/attempts", c.practice.Attempts)
	}

	rg.GET("/skills/:skillId/progress", c.practice.Progress)
}

// idempotency falls back to a pass-through handler when redis is disabled.
func (a *App) idempotency(cfg *config.Config) gin.HandlerFunc {
	if a.Redis == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Idempotency(a.Redis, cfg.Practice.IdempotencyTTL())
}
