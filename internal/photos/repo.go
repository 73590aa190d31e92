package photos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/enums"
)

// Repository encapsulates profile-photo persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertPhoto replaces the owner's photo in place; each owner holds at most
// one.
func (r *Repository) UpsertPhoto(ctx context.Context, row *models.ProfilePhoto) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "owner_kind"},
				{Name: "owner_id"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"content_type": row.ContentType,
				"data":         row.Data,
				"updated_at":   time.Now().UTC(),
			}),
		}).
		Create(row).Error
}

func (r *Repository) GetPhoto(ctx context.Context, ownerKind enums.PhotoOwnerKind, ownerID uuid.UUID) (*models.ProfilePhoto, error) {
	var row models.ProfilePhoto
	err := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", ownerKind, ownerID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) DeletePhoto(ctx context.Context, ownerKind enums.PhotoOwnerKind, ownerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", ownerKind, ownerID).
		Delete(&models.ProfilePhoto{})
	return result.RowsAffected, result.Error
}
