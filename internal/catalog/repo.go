package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
)

// Repository encapsulates wine catalog persistence.
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

func (r *Repository) SubAppellationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubAppellation{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) FindWine(ctx context.Context, name string, subAppellationID uuid.UUID) (*models.Wine, error) {
	var row models.Wine
	err := r.db.WithContext(ctx).
		Where("name = ? AND sub_appellation_id = ?", name, subAppellationID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateWine(ctx context.Context, row *models.Wine) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetWine(ctx context.Context, id uuid.UUID) (*models.Wine, error) {
	var row models.Wine
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) FindVintage(ctx context.Context, wineID uuid.UUID, year int) (*models.WineVintage, error) {
	var row models.WineVintage
	err := r.db.WithContext(ctx).
		Where("wine_id = ? AND vintage = ?", wineID, year).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateVintage(ctx context.Context, row *models.WineVintage) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetVintage(ctx context.Context, id uuid.UUID) (*models.WineVintage, error) {
	var row models.WineVintage
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListVintages(ctx context.Context, wineID uuid.UUID) ([]models.WineVintage, error) {
	var rows []models.WineVintage
	err := r.db.WithContext(ctx).
		Where("wine_id = ?", wineID).
		Order("vintage").
		Find(&rows).Error
	return rows, err
}

// UpsertEvolutionScore overwrites the score for an existing
// (user, vintage, year) key instead of erroring.
func (r *Repository) UpsertEvolutionScore(ctx context.Context, row *models.WineVintageEvolutionScore) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "wine_vintage_id"},
				{Name: "year"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"score":      row.Score,
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(row).Error
}

func (r *Repository) ListEvolutionScores(ctx context.Context, userID, wineVintageID uuid.UUID) ([]models.WineVintageEvolutionScore, error) {
	var rows []models.WineVintageEvolutionScore
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND wine_vintage_id = ?", userID, wineVintageID).
		Order("year").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) DeleteVintageScores(ctx context.Context, wineVintageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("wine_vintage_id = ?", wineVintageID).
		Delete(&models.WineVintageEvolutionScore{}).Error
}

func (r *Repository) DeleteVintageBottles(ctx context.Context, wineVintageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("wine_vintage_id = ?", wineVintageID).
		Delete(&models.Bottle{}).Error
}

func (r *Repository) DeleteVintage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.WineVintage{}, "id = ?", id).Error
}

func (r *Repository) DeleteWine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Wine{}, "id = ?", id).Error
}
