package app

import (
	"time"

	"github.com/yungbote/slangify-backend/internal/platform/envutil"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

type Config struct {
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DailyTokenLimit int

	OCRTimeout        time.Duration
	GenerationTimeout time.Duration
	TitleTimeout      time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:    envutil.Seconds("ACCESS_TOKEN_TTL", 24*time.Hour),
		DailyTokenLimit:   envutil.Int("DAILY_TOKEN_LIMIT", 50000),
		OCRTimeout:        envutil.Seconds("OCR_TIMEOUT", 20*time.Second),
		GenerationTimeout: envutil.Seconds("GENERATION_TIMEOUT", 60*time.Second),
		TitleTimeout:      envutil.Seconds("TITLE_TIMEOUT", 4*time.Second),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	if cfg.DailyTokenLimit <= 0 {
		cfg.DailyTokenLimit = 50000
	}
	return cfg
}
