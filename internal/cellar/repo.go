package cellar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/pagination"
)

// Repository encapsulates cellar persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateLocation(ctx context.Context, row *models.BottleLocation) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetLocation(ctx context.Context, id uuid.UUID) (*models.BottleLocation, error) {
	var row models.BottleLocation
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DetachLocationBottles clears the location pointer on bottles stored there.
// Bottles outlive their bins.
func (r *Repository) DetachLocationBottles(ctx context.Context, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Bottle{}).
		Where("bottle_location_id = ?", locationID).
		Update("bottle_location_id", nil).Error
}

func (r *Repository) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BottleLocation{}, "id = ?", id).Error
}

func (r *Repository) ListLocations(ctx context.Context, userID uuid.UUID) ([]models.BottleLocation, error) {
	var rows []models.BottleLocation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) VintageExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WineVintage{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateBottle(ctx context.Context, row *models.Bottle) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetBottle(ctx context.Context, id uuid.UUID) (*models.Bottle, error) {
	var row models.Bottle
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) UpdateBottleLocation(ctx context.Context, id uuid.UUID, locationID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Bottle{}).
		Where("id = ?", id).
		Update("bottle_location_id", locationID).Error
}

// MarkBottleDrunk flips is_drunk only when it is still false, so the state
// change is decided by the database, not a read-then-write race.
func (r *Repository) MarkBottleDrunk(ctx context.Context, id uuid.UUID, drunkAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Bottle{}).
		Where("id = ? AND is_drunk = ?", id, false).
		Updates(map[string]any{"is_drunk": true, "drunk_at": drunkAt})
	return result.RowsAffected, result.Error
}

// ListBottles pages a user's bottles newest first using a keyset cursor.
func (r *Repository) ListBottles(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Bottle, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Bottle
	err := query.Find(&rows).Error
	return rows, err
}
