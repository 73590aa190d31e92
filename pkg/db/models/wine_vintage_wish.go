package models

import (
	"time"

	"github.com/google/uuid"
)

// WineVintageWish is a vintage entry in a wishlist.
type WineVintageWish struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WishlistID    uuid.UUID `gorm:"column:wishlist_id;type:uuid;not null;uniqueIndex:ux_wine_vintage_wishes_wishlist_vintage"`
	WineVintageID uuid.UUID `gorm:"column:wine_vintage_id;type:uuid;not null;uniqueIndex:ux_wine_vintage_wishes_wishlist_vintage"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
