package app

import (
	"seccode_backend/internal/config"
	"seccode_backend/internal/middleware"
	"seccode_backend/internal/model"
	"seccode_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	// 未认证请求在此被拒，不会消耗沙箱资源
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 题目目录与启动
		authGroup.GET("/challenges", c.challenge.List)
		authGroup.GET("/challenges/:slug", c.challenge.Get)
		authGroup.POST("/challenges/:slug/start", c.challenge.Start)
		authGroup.GET("/challenges/:slug/archive", c.challenge.DownloadArchive)

		// 判题与自由执行
		authGroup.POST("/challenges/:slug/submissions", c.submission.Submit)
		authGroup.POST("/playground/run", c.submission.PlaygroundRun)

		// 用量与完成记录
		authGroup.GET("/usage", c.usage.GetUsage)
		authGroup.GET("/completions", c.usage.GetCompletions)
	}

	// 管理端路由
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.GET("/challenges", c.challenge.ListAll)
		adminGroup.POST("/challenges", c.challenge.Create)
		adminGroup.PUT("/challenges/:id", c.challenge.Update)
		adminGroup.DELETE("/challenges/:id", c.challenge.Delete)
		adminGroup.PUT("/challenges/:id/enabled", c.challenge.SetEnabled)
		adminGroup.PUT("/challenges/:id/test-cases", c.challenge.ReplaceTestCases)
		adminGroup.POST("/challenges/:id/archive", c.challenge.UploadArchive)
		adminGroup.PUT("/users/:id/plan", c.auth.SetPlan)
	}
}
