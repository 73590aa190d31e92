package models

import (
	"time"

	"github.com/google/uuid"
)

// SubAppellation is the leaf of the naming hierarchy. A NULL name represents
// the generic appellation-level node; uniqueness on (name, appellation) is a
// partial index declared in the migrations.
type SubAppellation struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          *string   `gorm:"column:name;type:text"`
	AppellationID uuid.UUID `gorm:"column:appellation_id;type:uuid;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
