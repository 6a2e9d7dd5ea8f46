package domain

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string    `gorm:"column:title;not null;default:''" json:"title"`
	IsArchived bool      `gorm:"column:is_archived;not null;default:false" json:"is_archived"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversation"
}
