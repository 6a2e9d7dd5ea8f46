package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*domain.User) ([]*domain.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.User, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*domain.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error)
	UpdateAvatar(ctx context.Context, tx *gorm.DB, userID uuid.UUID, bucketKey, url string) error

	// ApplyUsageDebit is the single mutation of the daily counter. It runs as
	// one conditional UPDATE: the new-period decision is made inside the
	// statement against the freshly read last_token_usage_date (UTC calendar
	// date), so concurrent debits and debits straddling midnight converge
	// without application-level read-modify-write. Returns the updated row.
	ApplyUsageDebit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, tokens int) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*domain.User) ([]*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	if len(users) == 0 {
		return []*domain.User{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*domain.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*domain.User
	if len(userEmails) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("email IN ?", userEmails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", userEmail).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateAvatar(ctx context.Context, tx *gorm.DB, userID uuid.UUID, bucketKey, url string) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"avatar_bucket_key": bucketKey,
			"avatar_url":        url,
		}).Error
}

func (ur *userRepo) ApplyUsageDebit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, tokens int) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	if tokens < 1 {
		tokens = 1
	}

	var updated domain.User
	res := transaction.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"daily_token_count": gorm.Expr(
				`CASE
					WHEN last_token_usage_date IS NULL
						OR (last_token_usage_date AT TIME ZONE 'utc')::date <> (?::timestamptz AT TIME ZONE 'utc')::date
					THEN ?
					ELSE daily_token_count + ?
				END`,
				now, tokens, tokens,
			),
			"last_token_usage_date": now,
			"updated_at":            now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &updated, nil
}
