package models

import (
	"time"

	"github.com/google/uuid"
)

// Region is a named wine region within a country.
type Region struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex:ux_regions_country_name"`
	CountryID uuid.UUID `gorm:"column:country_id;type:uuid;not null;uniqueIndex:ux_regions_country_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
