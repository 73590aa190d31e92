package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSisterhood is the membership association row. It is keyed by the
// (user, sisterhood) pair and carries membership state of its own.
type UserSisterhood struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	SisterhoodID uuid.UUID `gorm:"column:sisterhood_id;type:uuid;primaryKey;index:ix_user_sisterhoods_sisterhood_user"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false"`
	JoinedAt     time.Time `gorm:"column:joined_at;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
