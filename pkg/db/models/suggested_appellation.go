package models

import (
	"time"

	"github.com/google/uuid"
)

// SuggestedAppellation is a scored appellation candidate generated against
// one taste profile version. Immutable once written, deleted when superseded.
type SuggestedAppellation struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TasteProfileID   uuid.UUID `gorm:"column:taste_profile_id;type:uuid;not null;uniqueIndex:ux_suggested_appellations_profile_sub_appellation"`
	SubAppellationID uuid.UUID `gorm:"column:sub_appellation_id;type:uuid;not null;uniqueIndex:ux_suggested_appellations_profile_sub_appellation"`
	Reason           *string   `gorm:"column:reason;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
