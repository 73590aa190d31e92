package models

import (
	"time"

	"github.com/google/uuid"
)

// BottleShare is a one-directional visibility grant of a bottle to another
// user. Shares are audit-significant: user ends are restrict-on-delete.
type BottleShare struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BottleID         uuid.UUID `gorm:"column:bottle_id;type:uuid;not null;uniqueIndex:ux_bottle_shares_bottle_shared_with"`
	SharedByUserID   uuid.UUID `gorm:"column:shared_by_user_id;type:uuid;not null"`
	SharedWithUserID uuid.UUID `gorm:"column:shared_with_user_id;type:uuid;not null;uniqueIndex:ux_bottle_shares_bottle_shared_with"`
	SharedAt         time.Time `gorm:"column:shared_at;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
