package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/slangify-backend/internal/http/handlers"
	httpMW "github.com/yungbote/slangify-backend/internal/http/middleware"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	TranslateHandler    *httpH.TranslateHandler
	ConversationHandler *httpH.ConversationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.POST("/me/avatar", cfg.UserHandler.UploadAvatar)
		}

		if cfg.TranslateHandler != nil {
			protected.POST("/translate", cfg.TranslateHandler.Translate)
			protected.GET("/personas", cfg.TranslateHandler.Personas)
		}

		if cfg.ConversationHandler != nil {
			protected.GET("/conversations", cfg.ConversationHandler.List)
			protected.GET("/conversations/:id/messages", cfg.ConversationHandler.Messages)
			protected.PATCH("/conversations/:id", cfg.ConversationHandler.Rename)
			protected.POST("/conversations/:id/archive", cfg.ConversationHandler.Archive)
			protected.DELETE("/conversations/:id", cfg.ConversationHandler.Delete)
		}
	}

	return r
}
