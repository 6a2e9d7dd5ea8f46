package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, messages []*domain.Message) ([]*domain.Message, error)
	ListByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, limit int) ([]*domain.Message, error)
	CountByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (int64, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	repoLog := baseLog.With("repo", "MessageRepo")
	return &messageRepo{db: db, log: repoLog}
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*domain.Message) ([]*domain.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if len(messages) == 0 {
		return []*domain.Message{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (mr *messageRepo) ListByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	q := transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*domain.Message
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *messageRepo) CountByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
