package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/platform/logger"
	"github.com/yungbote/slangify-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Avatar       services.AvatarService
	Ledger       services.LedgerService
	Extraction   services.ExtractionService
	Generation   services.GenerationService
	Conversation services.ConversationService
	Translate    services.TranslateService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")
	var svcs Services

	avatar, err := services.NewAvatarService(log, reposet.User, clients.Bucket)
	if err != nil {
		log.Warn("Avatar service unavailable, users start without avatars", "error", err)
	} else {
		svcs.Avatar = avatar
	}

	auth, err := services.NewAuthService(db, log, reposet.User, svcs.Avatar, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	if err != nil {
		return svcs, fmt.Errorf("init auth service: %w", err)
	}
	svcs.Auth = auth

	svcs.Ledger = services.NewLedgerService(db, log, reposet.User, clients.CreditsCache, cfg.DailyTokenLimit)
	svcs.Extraction = services.NewExtractionService(log, clients.Vision, cfg.OCRTimeout)
	svcs.Generation = services.NewGenerationService(log, clients.OpenAI, cfg.GenerationTimeout)
	svcs.Conversation = services.NewConversationService(db, log, reposet.Conversation, reposet.Message, clients.OpenAI, cfg.TitleTimeout)

	svcs.Translate = services.NewTranslateService(
		db, log,
		reposet.User, reposet.Message, reposet.UsageLog,
		svcs.Conversation, svcs.Ledger, svcs.Extraction, svcs.Generation,
		clients.Bucket,
	)

	return svcs, nil
}
