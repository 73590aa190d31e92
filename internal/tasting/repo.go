package tasting

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/pagination"
)

// Repository encapsulates tasting-note persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BottleExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Bottle{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateNote(ctx context.Context, row *models.TastingNote) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) ListBottleNotes(ctx context.Context, bottleID uuid.UUID) ([]models.TastingNote, error) {
	var rows []models.TastingNote
	err := r.db.WithContext(ctx).
		Where("bottle_id = ?", bottleID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

// ListUserNotes pages a user's notes newest first using a keyset cursor.
func (r *Repository) ListUserNotes(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.TastingNote, error) {
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

	var rows []models.TastingNote
	err := query.Find(&rows).Error
	return rows, err
}
