package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
)

// Repository encapsulates notification-dismissal persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertDismissal records a dismissal, keeping the original timestamp when
// the same notification is dismissed again.
func (r *Repository) UpsertDismissal(ctx context.Context, row *models.NotificationDismissal) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "category"},
				{Name: "stamp"},
			},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *Repository) DismissalExists(ctx context.Context, userID uuid.UUID, category, stamp string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.NotificationDismissal{}).
		Where("user_id = ? AND category = ? AND stamp = ?", userID, category, stamp).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) ListDismissals(ctx context.Context, userID uuid.UUID) ([]models.NotificationDismissal, error) {
	var rows []models.NotificationDismissal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("dismissed_at_utc DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
