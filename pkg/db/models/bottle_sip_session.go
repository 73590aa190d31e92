package models

import (
	"time"

	"github.com/google/uuid"
)

// BottleSipSession attaches a bottle to a sip session. IsRevealed starts
// false for blind tastings and only ever flips to true.
type BottleSipSession struct {
	BottleID     uuid.UUID `gorm:"column:bottle_id;type:uuid;primaryKey"`
	SipSessionID uuid.UUID `gorm:"column:sip_session_id;type:uuid;primaryKey;index"`
	IsRevealed   bool      `gorm:"column:is_revealed;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
