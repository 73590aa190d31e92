package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariepujol/vinsisters-backend/pkg/enums"
)

// SisterhoodInvitation is an email-based invitation into a sisterhood,
// optionally resolved to a user once accepted.
type SisterhoodInvitation struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SisterhoodID  uuid.UUID              `gorm:"column:sisterhood_id;type:uuid;not null;uniqueIndex:ux_sisterhood_invitations_sisterhood_email"`
	InviteeEmail  string                 `gorm:"column:invitee_email;type:text;not null;uniqueIndex:ux_sisterhood_invitations_sisterhood_email"`
	InviteeUserID *uuid.UUID             `gorm:"column:invitee_user_id;type:uuid"`
	Status        enums.InvitationStatus `gorm:"column:status;type:text;not null"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
