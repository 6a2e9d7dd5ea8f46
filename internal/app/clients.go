package app

import (
	"fmt"

	"github.com/yungbote/slangify-backend/internal/clients/gcp"
	"github.com/yungbote/slangify-backend/internal/clients/openai"
	"github.com/yungbote/slangify-backend/internal/clients/redis"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

// Clients holds the external collaborators. OpenAI is required; the GCP and
// redis clients are optional and stay nil when their env is absent, with the
// dependent features degrading accordingly.
type Clients struct {
	OpenAI       openai.Client
	Vision       gcp.Vision
	Bucket       gcp.Bucket
	CreditsCache redis.CreditsCache
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var clients Clients

	ai, err := openai.NewClient(log)
	if err != nil {
		return clients, fmt.Errorf("init openai client: %w", err)
	}
	clients.OpenAI = ai

	vision, err := gcp.NewVision(log)
	if err != nil {
		log.Warn("Vision OCR unavailable, image extraction will degrade", "error", err)
	} else {
		clients.Vision = vision
	}

	bucket, err := gcp.NewBucket(log)
	if err != nil {
		log.Warn("Storage bucket unavailable, image and avatar uploads disabled", "error", err)
	} else {
		clients.Bucket = bucket
	}

	cache, err := redis.NewCreditsCache(log)
	if err != nil {
		log.Warn("Redis credits cache unavailable, falling back to postgres reads", "error", err)
	} else {
		clients.CreditsCache = cache
	}

	return clients, nil
}

func (c Clients) Close() {
	if c.Vision != nil {
		_ = c.Vision.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
	if c.CreditsCache != nil {
		_ = c.CreditsCache.Close()
	}
}
