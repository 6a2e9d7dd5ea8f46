package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

type ConversationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, conversations []*domain.Conversation) ([]*domain.Conversation, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, conversationIDs []uuid.UUID) ([]*domain.Conversation, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeArchived bool) ([]*domain.Conversation, error)
	UpdateTitle(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, title string) error
	SetArchived(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, archived bool) error
	Touch(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	repoLog := baseLog.With("repo", "ConversationRepo")
	return &conversationRepo{db: db, log: repoLog}
}

func (cr *conversationRepo) Create(ctx context.Context, tx *gorm.DB, conversations []*domain.Conversation) ([]*domain.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(conversations) == 0 {
		return []*domain.Conversation{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func (cr *conversationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, conversationIDs []uuid.UUID) ([]*domain.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*domain.Conversation
	if len(conversationIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", conversationIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *conversationRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeArchived bool) ([]*domain.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	var results []*domain.Conversation
	if err := q.Order("updated_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *conversationRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, title string) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Update("title", title).Error
}

func (cr *conversationRepo) SetArchived(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, archived bool) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Update("is_archived", archived).Error
}

func (cr *conversationRepo) Touch(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", at).Error
}

func (cr *conversationRepo) Delete(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", conversationID).
		Delete(&domain.Conversation{}).Error
}
