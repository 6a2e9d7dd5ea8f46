package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/slangify-backend/internal/http"
	httpH "github.com/yungbote/slangify-backend/internal/http/handlers"
	httpMW "github.com/yungbote/slangify-backend/internal/http/middleware"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Translate    *httpH.TranslateHandler
	Conversation *httpH.ConversationHandler
}

func wireHandlers(log *logger.Logger, reposet Repos, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Auth:         httpH.NewAuthHandler(svcs.Auth),
		User:         httpH.NewUserHandler(reposet.User, svcs.Ledger, svcs.Avatar),
		Translate:    httpH.NewTranslateHandler(svcs.Translate, svcs.Ledger),
		Conversation: httpH.NewConversationHandler(svcs.Conversation),
	}
}

func wireMiddleware(log *logger.Logger, svcs Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, svcs.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                 log,
		AuthMiddleware:      middleware.Auth,
		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		UserHandler:         handlers.User,
		TranslateHandler:    handlers.Translate,
		ConversationHandler: handlers.Conversation,
	})
}
