package models

import (
	"time"

	"github.com/google/uuid"
)

// WineVintage is a wine in a specific year.
type WineVintage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WineID    uuid.UUID `gorm:"column:wine_id;type:uuid;not null;uniqueIndex:ux_wine_vintages_wine_year"`
	Vintage   int       `gorm:"column:vintage;not null;uniqueIndex:ux_wine_vintages_wine_year"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
