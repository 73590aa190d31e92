package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
)

// Service exposes the notification-dismissal contract. A dismissal is keyed
// by (user, category, stamp) and dismissing twice changes nothing.
type Service interface {
	Dismiss(ctx context.Context, userID uuid.UUID, category, stamp string) error
	IsDismissed(ctx context.Context, userID uuid.UUID, category, stamp string) (bool, error)
	ListDismissals(ctx context.Context, userID uuid.UUID) ([]models.NotificationDismissal, error)
}

// ServiceParams groups dependencies for the notifications service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds a notifications service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifications repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Dismiss(ctx context.Context, userID uuid.UUID, category, stamp string) error {
	category = strings.TrimSpace(category)
	stamp = strings.TrimSpace(stamp)
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if category == "" || stamp == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category and stamp are required")
	}

	row := &models.NotificationDismissal{
		UserID:         userID,
		Category:       category,
		Stamp:          stamp,
		DismissedAtUTC: time.Now().UTC(),
	}
	if err := s.repo.UpsertDismissal(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record dismissal")
	}
	return nil
}

func (s *service) IsDismissed(ctx context.Context, userID uuid.UUID, category, stamp string) (bool, error) {
	if userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	dismissed, err := s.repo.DismissalExists(ctx, userID, strings.TrimSpace(category), strings.TrimSpace(stamp))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check dismissal")
	}
	return dismissed, nil
}

func (s *service) ListDismissals(ctx context.Context, userID uuid.UUID) ([]models.NotificationDismissal, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListDismissals(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dismissals")
	}
	return rows, nil
}
