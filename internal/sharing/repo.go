package sharing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
)

// Repository encapsulates bottle-share persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBottle(ctx context.Context, id uuid.UUID) (*models.Bottle, error) {
	var row models.Bottle
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateShare(ctx context.Context, row *models.BottleShare) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) DeleteShare(ctx context.Context, bottleID, sharedWithUserID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("bottle_id = ? AND shared_with_user_id = ?", bottleID, sharedWithUserID).
		Delete(&models.BottleShare{})
	return result.RowsAffected, result.Error
}

func (r *Repository) ListBottleShares(ctx context.Context, bottleID uuid.UUID) ([]models.BottleShare, error) {
	var rows []models.BottleShare
	err := r.db.WithContext(ctx).
		Where("bottle_id = ?", bottleID).
		Order("shared_at").
		Find(&rows).Error
	return rows, err
}

// ListSharedWithUser returns the shares granting the user visibility into
// other cellars, newest grant first.
func (r *Repository) ListSharedWithUser(ctx context.Context, userID uuid.UUID) ([]models.BottleShare, error) {
	var rows []models.BottleShare
	err := r.db.WithContext(ctx).
		Where("shared_with_user_id = ?", userID).
		Order("shared_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
