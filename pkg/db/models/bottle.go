package models

import (
	"time"

	"github.com/google/uuid"
)

// Bottle is a physical unit of a vintage. DrunkAt is set exactly when IsDrunk
// flips to true; the flip is append-only.
type Bottle struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WineVintageID    uuid.UUID  `gorm:"column:wine_vintage_id;type:uuid;not null;index"`
	UserID           *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	BottleLocationID *uuid.UUID `gorm:"column:bottle_location_id;type:uuid"`
	IsDrunk          bool       `gorm:"column:is_drunk;not null;default:false"`
	DrunkAt          *time.Time `gorm:"column:drunk_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
