package models

import (
	"time"

	"github.com/google/uuid"
)

// TasteProfile is a versioned snapshot of a user's stated preferences. At
// most one row per user has InUse=true; the partial unique index in the
// migrations closes the activation race at the storage layer.
type TasteProfile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Profile   string    `gorm:"column:profile;type:varchar(4096);not null"`
	Summary   string    `gorm:"column:summary;type:varchar(512);not null"`
	InUse     bool      `gorm:"column:in_use;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
