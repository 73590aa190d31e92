package models

import (
	"time"

	"github.com/google/uuid"
)

// SuggestedWine is a wine candidate under a suggested appellation.
type SuggestedWine struct {
	ID                     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SuggestedAppellationID uuid.UUID `gorm:"column:suggested_appellation_id;type:uuid;not null;uniqueIndex:ux_suggested_wines_appellation_wine"`
	WineID                 uuid.UUID `gorm:"column:wine_id;type:uuid;not null;uniqueIndex:ux_suggested_wines_appellation_wine"`
	Vintage                *string   `gorm:"column:vintage;type:text"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime"`
}
