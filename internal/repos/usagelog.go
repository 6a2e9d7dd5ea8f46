package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

type UsageLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*domain.UsageLog) ([]*domain.UsageLog, error)
	// SumSuccessfulTokensOnDay totals tokens_used across successful rows whose
	// created_at falls on the given UTC calendar day. Used for audit and to
	// reconstruct the cached counter when it drifts.
	SumSuccessfulTokensOnDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (int64, error)
}

type usageLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageLogRepo(db *gorm.DB, baseLog *logger.Logger) UsageLogRepo {
	repoLog := baseLog.With("repo", "UsageLogRepo")
	return &usageLogRepo{db: db, log: repoLog}
}

func (ulr *usageLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*domain.UsageLog) ([]*domain.UsageLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ulr.db
	}
	if len(logs) == 0 {
		return []*domain.UsageLog{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (ulr *usageLogRepo) SumSuccessfulTokensOnDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ulr.db
	}
	var total int64
	err := transaction.WithContext(ctx).
		Model(&domain.UsageLog{}).
		Select("COALESCE(SUM(tokens_used), 0)").
		Where("user_id = ?", userID).
		Where("success = ?", true).
		Where("(created_at AT TIME ZONE 'utc')::date = (?::timestamptz AT TIME ZONE 'utc')::date", day).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
