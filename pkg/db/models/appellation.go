package models

import (
	"time"

	"github.com/google/uuid"
)

// Appellation is a named appellation within a region.
type Appellation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex:ux_appellations_region_name"`
	RegionID  uuid.UUID `gorm:"column:region_id;type:uuid;not null;uniqueIndex:ux_appellations_region_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
