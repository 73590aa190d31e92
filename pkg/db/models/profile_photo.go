package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariepujol/vinsisters-backend/pkg/enums"
)

// ProfilePhoto holds an opaque binary payload for a user or sisterhood. The
// bytes are never interpreted; callers supply the content type.
type ProfilePhoto struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerKind   enums.PhotoOwnerKind `gorm:"column:owner_kind;type:text;not null;uniqueIndex:ux_profile_photos_owner"`
	OwnerID     uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:ux_profile_photos_owner"`
	ContentType string               `gorm:"column:content_type;type:text;not null"`
	Data        []byte               `gorm:"column:data;type:bytea;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
