package tasteprofile

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/pagination"
)

// Repository encapsulates taste-profile persistence.
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

func (r *Repository) CreateProfile(ctx context.Context, row *models.TasteProfile) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*models.TasteProfile, error) {
	var row models.TasteProfile
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetActiveProfile(ctx context.Context, userID uuid.UUID) (*models.TasteProfile, error) {
	var row models.TasteProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND in_use = ?", userID, true).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ArchiveActiveProfile clears the in_use flag on whatever profile currently
// holds it for the user.
func (r *Repository) ArchiveActiveProfile(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.TasteProfile{}).
		Where("user_id = ? AND in_use = ?", userID, true).
		Update("in_use", false).Error
}

// ListProfiles pages a user's profile versions newest first using a keyset
// cursor.
func (r *Repository) ListProfiles(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.TasteProfile, error) {
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

	var rows []models.TasteProfile
	err := query.Find(&rows).Error
	return rows, err
}

func (r *Repository) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TasteProfile{}, "id = ?", id).Error
}

func (r *Repository) SubAppellationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubAppellation{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) WineExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Wine{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateSuggestedAppellation(ctx context.Context, row *models.SuggestedAppellation) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) CreateSuggestedWine(ctx context.Context, row *models.SuggestedWine) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// DeleteProfileSuggestions removes the whole suggestion snapshot for one
// profile version, wines first.
func (r *Repository) DeleteProfileSuggestions(ctx context.Context, tasteProfileID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("suggested_appellation_id IN (?)",
			r.db.Model(&models.SuggestedAppellation{}).
				Select("id").
				Where("taste_profile_id = ?", tasteProfileID),
		).
		Delete(&models.SuggestedWine{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("taste_profile_id = ?", tasteProfileID).
		Delete(&models.SuggestedAppellation{}).Error
}

func (r *Repository) ListSuggestedAppellations(ctx context.Context, tasteProfileID uuid.UUID) ([]models.SuggestedAppellation, error) {
	var rows []models.SuggestedAppellation
	err := r.db.WithContext(ctx).
		Where("taste_profile_id = ?", tasteProfileID).
		Order("created_at, id").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListSuggestedWines(ctx context.Context, suggestedAppellationID uuid.UUID) ([]models.SuggestedWine, error) {
	var rows []models.SuggestedWine
	err := r.db.WithContext(ctx).
		Where("suggested_appellation_id = ?", suggestedAppellationID).
		Order("created_at, id").
		Find(&rows).Error
	return rows, err
}
