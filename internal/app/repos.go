package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/platform/logger"
	"github.com/yungbote/slangify-backend/internal/repos"
)

type Repos struct {
	User         repos.UserRepo
	Conversation repos.ConversationRepo
	Message      repos.MessageRepo
	UsageLog     repos.UsageLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),
		Message:      repos.NewMessageRepo(db, log),
		UsageLog:     repos.NewUsageLogRepo(db, log),
	}
}
