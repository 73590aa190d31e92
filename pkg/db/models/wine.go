package models

import (
	"time"

	"github.com/google/uuid"
)

// Wine is a named wine anchored to a sub-appellation.
type Wine struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string    `gorm:"column:name;type:text;not null;uniqueIndex:ux_wines_sub_appellation_name"`
	SubAppellationID uuid.UUID `gorm:"column:sub_appellation_id;type:uuid;not null;uniqueIndex:ux_wines_sub_appellation_name"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
