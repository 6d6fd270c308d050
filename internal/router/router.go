package router

import (
	"github.com/gin-gonic/gin"

	"github.com/growthsaas/ai-tutor/internal/handler"
	"github.com/growthsaas/ai-tutor/internal/middleware"
	"github.com/growthsaas/ai-tutor/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.GET("/me", middleware.RequireAuth(svc), h.Auth.Me)
		}

		// 公开端点：终端访客通过嵌入挂件调用
		api.POST("/chatbots/:chatbotId/chat", h.Chat.Chat)
		api.POST("/chatbots/:chatbotId/inquiries", h.Message.CaptureInquiry)

		// 控制台端点：机器人归属者管理
		dashboard := api.Group("/chatbots", middleware.RequireAuth(svc))
		{
			dashboard.POST("", h.Chatbot.Create)
			dashboard.GET("", h.Chatbot.List)
			dashboard.GET("/:chatbotId", h.Chatbot.Get)
			dashboard.PUT("/:chatbotId", h.Chatbot.Update)
			dashboard.DELETE("/:chatbotId", h.Chatbot.Delete)

			dashboard.POST("/:chatbotId/files", h.File.Upload)
			dashboard.GET("/:chatbotId/messages", h.Message.ListMessages)
			dashboard.GET("/:chatbotId/messages/export", h.Message.ExportMessages)
			dashboard.GET("/:chatbotId/errors", h.Message.ListErrors)
			dashboard.GET("/:chatbotId/inquiries", h.Message.ListInquiries)
		}

		// 训练文件
		files := api.Group("/files", middleware.RequireAuth(svc))
		{
			files.GET("", h.File.List)
			files.DELETE("/:fileId", h.File.Delete)
		}
	}

	return r
}
