package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/pagination"
)

// Repository encapsulates wishlist persistence.
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

func (r *Repository) CreateWishlist(ctx context.Context, row *models.Wishlist) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetWishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	var row models.Wishlist
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListWishlists(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	var rows []models.Wishlist
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) DeleteWishlistWishes(ctx context.Context, wishlistID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Delete(&models.WineVintageWish{}).Error
}

func (r *Repository) DeleteWishlist(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Wishlist{}, "id = ?", id).Error
}

func (r *Repository) VintageExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WineVintage{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// AddWish inserts a wish, silently keeping the existing row when the vintage
// is already on the list.
func (r *Repository) AddWish(ctx context.Context, row *models.WineVintageWish) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "wishlist_id"},
				{Name: "wine_vintage_id"},
			},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *Repository) RemoveWish(ctx context.Context, wishlistID, wineVintageID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND wine_vintage_id = ?", wishlistID, wineVintageID).
		Delete(&models.WineVintageWish{})
	return result.RowsAffected, result.Error
}

// ListWishes pages a wishlist's entries newest first using a keyset cursor.
func (r *Repository) ListWishes(ctx context.Context, wishlistID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WineVintageWish, error) {
	query := r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.WineVintageWish
	err := query.Find(&rows).Error
	return rows, err
}
