package sharing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
)

// Service exposes the bottle-share contract. A share is a one-directional
// visibility grant from the bottle's owner to another user.
type Service interface {
	ShareBottle(ctx context.Context, ownerID, bottleID, sharedWithUserID uuid.UUID) (*models.BottleShare, error)
	RevokeShare(ctx context.Context, ownerID, bottleID, sharedWithUserID uuid.UUID) error
	ListBottleShares(ctx context.Context, bottleID uuid.UUID) ([]models.BottleShare, error)
	ListSharedWithUser(ctx context.Context, userID uuid.UUID) ([]models.BottleShare, error)
}

// ServiceParams groups dependencies for the sharing service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds a sharing service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sharing repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) ShareBottle(ctx context.Context, ownerID, bottleID, sharedWithUserID uuid.UUID) (*models.BottleShare, error) {
	if ownerID == uuid.Nil || bottleID == uuid.Nil || sharedWithUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner, bottle and recipient ids are required")
	}
	if ownerID == sharedWithUserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot share a bottle with yourself")
	}

	bottle, err := s.repo.GetBottle(ctx, bottleID)
	if err != nil {
		return nil, notFoundOrDependency(err, "bottle")
	}
	if bottle.UserID == nil || *bottle.UserID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "bottle belongs to another user")
	}

	row := &models.BottleShare{
		BottleID:         bottleID,
		SharedByUserID:   ownerID,
		SharedWithUserID: sharedWithUserID,
		SharedAt:         time.Now().UTC(),
	}
	if err := s.repo.CreateShare(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "bottle already shared with user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create share")
	}
	return row, nil
}

func (s *service) RevokeShare(ctx context.Context, ownerID, bottleID, sharedWithUserID uuid.UUID) error {
	if ownerID == uuid.Nil || bottleID == uuid.Nil || sharedWithUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner, bottle and recipient ids are required")
	}

	bottle, err := s.repo.GetBottle(ctx, bottleID)
	if err != nil {
		return notFoundOrDependency(err, "bottle")
	}
	if bottle.UserID == nil || *bottle.UserID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "bottle belongs to another user")
	}

	affected, err := s.repo.DeleteShare(ctx, bottleID, sharedWithUserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke share")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "share not found")
	}
	return nil
}

func (s *service) ListBottleShares(ctx context.Context, bottleID uuid.UUID) ([]models.BottleShare, error) {
	if bottleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle id is required")
	}
	rows, err := s.repo.ListBottleShares(ctx, bottleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bottle shares")
	}
	return rows, nil
}

func (s *service) ListSharedWithUser(ctx context.Context, userID uuid.UUID) ([]models.BottleShare, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListSharedWithUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shares")
	}
	return rows, nil
}

func notFoundOrDependency(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
