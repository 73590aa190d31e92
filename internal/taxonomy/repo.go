package taxonomy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
)

// Repository encapsulates taxonomy persistence.
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

func (r *Repository) FindCountryByName(ctx context.Context, name string) (*models.Country, error) {
	var row models.Country
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateCountry(ctx context.Context, row *models.Country) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) FindRegion(ctx context.Context, name string, countryID uuid.UUID) (*models.Region, error) {
	var row models.Region
	err := r.db.WithContext(ctx).
		Where("name = ? AND country_id = ?", name, countryID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateRegion(ctx context.Context, row *models.Region) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) ListRegions(ctx context.Context, countryID uuid.UUID) ([]models.Region, error) {
	var rows []models.Region
	err := r.db.WithContext(ctx).
		Where("country_id = ?", countryID).
		Order("name").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindAppellation(ctx context.Context, name string, regionID uuid.UUID) (*models.Appellation, error) {
	var row models.Appellation
	err := r.db.WithContext(ctx).
		Where("name = ? AND region_id = ?", name, regionID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateAppellation(ctx context.Context, row *models.Appellation) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) ListAppellations(ctx context.Context, regionID uuid.UUID) ([]models.Appellation, error) {
	var rows []models.Appellation
	err := r.db.WithContext(ctx).
		Where("region_id = ?", regionID).
		Order("name").
		Find(&rows).Error
	return rows, err
}

// FindSubAppellation treats a nil name as the generic appellation-level node.
func (r *Repository) FindSubAppellation(ctx context.Context, name *string, appellationID uuid.UUID) (*models.SubAppellation, error) {
	query := r.db.WithContext(ctx).Where("appellation_id = ?", appellationID)
	if name == nil {
		query = query.Where("name IS NULL")
	} else {
		query = query.Where("name = ?", *name)
	}

	var row models.SubAppellation
	if err := query.First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateSubAppellation(ctx context.Context, row *models.SubAppellation) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetCountry(ctx context.Context, id uuid.UUID) (*models.Country, error) {
	var row models.Country
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetRegion(ctx context.Context, id uuid.UUID) (*models.Region, error) {
	var row models.Region
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetAppellation(ctx context.Context, id uuid.UUID) (*models.Appellation, error) {
	var row models.Appellation
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetSubAppellation(ctx context.Context, id uuid.UUID) (*models.SubAppellation, error) {
	var row models.SubAppellation
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CountRegions(ctx context.Context, countryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Region{}).
		Where("country_id = ?", countryID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountAppellations(ctx context.Context, regionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appellation{}).
		Where("region_id = ?", regionID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountSubAppellations(ctx context.Context, appellationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubAppellation{}).
		Where("appellation_id = ?", appellationID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountWines(ctx context.Context, subAppellationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Wine{}).
		Where("sub_appellation_id = ?", subAppellationID).
		Count(&count).Error
	return count, err
}

func (r *Repository) DeleteCountry(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Country{}, "id = ?", id).Error
}

func (r *Repository) DeleteRegion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Region{}, "id = ?", id).Error
}

func (r *Repository) DeleteAppellation(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Appellation{}, "id = ?", id).Error
}

func (r *Repository) DeleteSubAppellation(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SubAppellation{}, "id = ?", id).Error
}
