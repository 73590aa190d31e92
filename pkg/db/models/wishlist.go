package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist is a named, per-user list of desired vintages.
type Wishlist struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_wishlists_user_name"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex:ux_wishlists_user_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
