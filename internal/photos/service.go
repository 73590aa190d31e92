package photos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/enums"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
)

// MaxPhotoBytes caps the stored payload at 5 MiB.
const MaxPhotoBytes = 5 << 20

// Service exposes the profile-photo contract. Setting a photo replaces the
// previous one; the payload is opaque bytes.
type Service interface {
	SetUserPhoto(ctx context.Context, userID uuid.UUID, contentType string, data []byte) (*models.ProfilePhoto, error)
	SetSisterhoodPhoto(ctx context.Context, sisterhoodID uuid.UUID, contentType string, data []byte) (*models.ProfilePhoto, error)
	GetPhoto(ctx context.Context, ownerKind enums.PhotoOwnerKind, ownerID uuid.UUID) (*models.ProfilePhoto, error)
	DeletePhoto(ctx context.Context, ownerKind enums.PhotoOwnerKind, ownerID uuid.UUID) error
}

// ServiceParams groups dependencies for the photos service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds a photos service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photos repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) SetUserPhoto(ctx context.Context, userID uuid.UUID, contentType string, data []byte) (*models.ProfilePhoto, error) {
	return s.setPhoto(ctx, enums.PhotoOwnerUser, userID, contentType, data)
}

func (s *service) SetSisterhoodPhoto(ctx context.Context, sisterhoodID uuid.UUID, contentType string, data []byte) (*models.ProfilePhoto, error) {
	return s.setPhoto(ctx, enums.PhotoOwnerSisterhood, sisterhoodID, contentType, data)
}

func (s *service) setPhoto(ctx context.Context, ownerKind enums.PhotoOwnerKind, ownerID uuid.UUID, contentType string, data []byte) (*models.ProfilePhoto, error) {
	contentType = strings.TrimSpace(contentType)
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if contentType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type is required")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo data is required")
	}
	if len(data) > MaxPhotoBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo exceeds the size limit")
	}

	row := &models.ProfilePhoto{
		OwnerKind:   ownerKind,
		OwnerID:     ownerID,
		ContentType: contentType,
		Data:        data,
	}
	if err := s.repo.UpsertPhoto(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store photo")
	}
	return row, nil
}

func (s *service) GetPhoto(ctx context.Context, ownerKind enums.PhotoOwnerKind, ownerID uuid.UUID) (*models.ProfilePhoto, error) {
	if !ownerKind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid owner kind")
	}
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	row, err := s.repo.GetPhoto(ctx, ownerKind, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load photo")
	}
	return row, nil
}

func (s *service) DeletePhoto(ctx context.Context, ownerKind enums.PhotoOwnerKind, ownerID uuid.UUID) error {
	if !ownerKind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid owner kind")
	}
	if ownerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	affected, err := s.repo.DeletePhoto(ctx, ownerKind, ownerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete photo")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
	}
	return nil
}
