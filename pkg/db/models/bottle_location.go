package models

import (
	"time"

	"github.com/google/uuid"
)

// BottleLocation is a per-user storage bin.
type BottleLocation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex:ux_bottle_locations_user_name"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_bottle_locations_user_name"`
	Capacity  *int      `gorm:"column:capacity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
