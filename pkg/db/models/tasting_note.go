package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TastingNote is one tasting event for a bottle by a user. Repeat tastings of
// the same bottle are allowed, so there is no uniqueness on (bottle, user).
type TastingNote struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BottleID  uuid.UUID        `gorm:"column:bottle_id;type:uuid;not null;index"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Note      string           `gorm:"column:note;type:varchar(2048);not null"`
	Score     *decimal.Decimal `gorm:"column:score;type:numeric(5,2)"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
