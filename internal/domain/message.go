package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message rows are append-only: once written they are never mutated.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`

	Role    string `gorm:"column:role;not null;index" json:"role"`
	Content string `gorm:"column:content;type:text;not null;default:''" json:"content"`

	ImageURL string `gorm:"column:image_url" json:"image_url,omitempty"`

	// Model and TokensUsed are set on assistant messages only. TokensUsed is
	// never below 1 for assistant rows.
	Model      string `gorm:"column:model" json:"model,omitempty"`
	TokensUsed int    `gorm:"column:tokens_used;not null;default:0" json:"tokens_used"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Message) TableName() string {
	return "message"
}
