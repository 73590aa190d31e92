package models

import (
	"time"

	"github.com/google/uuid"
)

// SipSession is a scheduled tasting event hosted by a sisterhood.
type SipSession struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SisterhoodID   uuid.UUID `gorm:"column:sisterhood_id;type:uuid;not null;index"`
	Name           string    `gorm:"column:name;type:text;not null"`
	Description    *string   `gorm:"column:description;type:text"`
	ScheduledAt    time.Time `gorm:"column:scheduled_at;not null"`
	Location       *string   `gorm:"column:location;type:text"`
	FoodSuggestion *string   `gorm:"column:food_suggestion;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
