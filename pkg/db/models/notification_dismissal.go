package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationDismissal suppresses re-showing a notification identified by
// (user, category, stamp).
type NotificationDismissal struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_notification_dismissals_user_category_stamp"`
	Category       string    `gorm:"column:category;type:text;not null;uniqueIndex:ux_notification_dismissals_user_category_stamp"`
	Stamp          string    `gorm:"column:stamp;type:text;not null;uniqueIndex:ux_notification_dismissals_user_category_stamp"`
	DismissedAtUTC time.Time `gorm:"column:dismissed_at_utc;not null"`
}
