package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

// CreditsCache is an advisory read-through cache of a user's remaining daily
// credits. It only serves display reads; every enforcement decision re-reads
// postgres, and a debit invalidates the cached value.
type CreditsCache interface {
	Get(ctx context.Context, userID uuid.UUID) (int, bool)
	Set(ctx context.Context, userID uuid.UUID, remaining int)
	Invalidate(ctx context.Context, userID uuid.UUID)
	Close() error
}

type creditsCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewCreditsCache(log *logger.Logger) (CreditsCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 60 * time.Second
	if v := strings.TrimSpace(os.Getenv("REDIS_CREDITS_TTL_SECONDS")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &creditsCache{
		log: log.With("service", "RedisCreditsCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func creditsKey(userID uuid.UUID) string {
	return "credits:" + userID.String()
}

func (cc *creditsCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	v, err := cc.rdb.Get(ctx, creditsKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (cc *creditsCache) Set(ctx context.Context, userID uuid.UUID, remaining int) {
	if err := cc.rdb.Set(ctx, creditsKey(userID), strconv.Itoa(remaining), cc.ttl).Err(); err != nil {
		cc.log.Debug("credits cache set failed", "error", err)
	}
}

func (cc *creditsCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := cc.rdb.Del(ctx, creditsKey(userID)).Err(); err != nil {
		cc.log.Debug("credits cache invalidate failed", "error", err)
	}
}

func (cc *creditsCache) Close() error {
	if cc == nil || cc.rdb == nil {
		return nil
	}
	return cc.rdb.Close()
}
