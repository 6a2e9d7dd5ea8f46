package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UsageLog is the append-only audit trail of generation spend, one row per
// pipeline execution whether generation succeeded or not. The user's running
// counter is a cached projection of these rows and can be reconstructed from
// them if it drifts.
type UsageLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	MessageID *uuid.UUID `gorm:"type:uuid;index" json:"message_id,omitempty"`

	Model      string `gorm:"column:model;not null" json:"model"`
	TokensUsed int    `gorm:"column:tokens_used;not null" json:"tokens_used"`

	Success      bool           `gorm:"column:success;not null" json:"success"`
	ErrorMessage string         `gorm:"column:error_message" json:"error_message,omitempty"`
	Usage        datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (UsageLog) TableName() string {
	return "usage_log"
}
