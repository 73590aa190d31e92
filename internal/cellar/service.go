package cellar

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
	"github.com/mariepujol/vinsisters-backend/pkg/pagination"
)

// TxRunner executes a function inside one storage transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BottlePage is one page of a user's bottles plus the cursor for the next one.
type BottlePage struct {
	Bottles    []models.Bottle
	NextCursor string
}

// Service exposes the cellar contract: per-user storage bins and the bottles
// stored in them. Drinking a bottle is a one-way state change.
type Service interface {
	CreateLocation(ctx context.Context, userID uuid.UUID, name string, capacity *int) (*models.BottleLocation, error)
	DeleteLocation(ctx context.Context, userID, locationID uuid.UUID) error
	ListLocations(ctx context.Context, userID uuid.UUID) ([]models.BottleLocation, error)

	AddBottle(ctx context.Context, userID, wineVintageID uuid.UUID, locationID *uuid.UUID) (*models.Bottle, error)
	MoveBottle(ctx context.Context, userID, bottleID uuid.UUID, locationID *uuid.UUID) error
	MarkDrunk(ctx context.Context, userID, bottleID uuid.UUID, at time.Time) (*models.Bottle, error)
	ListBottles(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*BottlePage, error)
}

// ServiceParams groups dependencies for the cellar service.
type ServiceParams struct {
	Repo *Repository
	Tx   TxRunner
}

type service struct {
	repo *Repository
	tx   TxRunner
}

// NewService builds a cellar service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cellar repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

func (s *service) CreateLocation(ctx context.Context, userID uuid.UUID, name string, capacity *int) (*models.BottleLocation, error) {
	name = strings.TrimSpace(name)
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}
	if capacity != nil && *capacity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive")
	}

	row := &models.BottleLocation{Name: name, UserID: userID, Capacity: capacity}
	if err := s.repo.CreateLocation(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "location name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create location")
	}
	return row, nil
}

// DeleteLocation removes a bin. Bottles stored there are kept and merely lose
// their location pointer, mirroring the schema's ON DELETE SET NULL.
func (s *service) DeleteLocation(ctx context.Context, userID, locationID uuid.UUID) error {
	if userID == uuid.Nil || locationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and location id are required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		location, err := repo.GetLocation(ctx, locationID)
		if err != nil {
			return notFoundOrDependency(err, "location")
		}
		if location.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "location belongs to another user")
		}
		if err := repo.DetachLocationBottles(ctx, locationID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach bottles")
		}
		if err := repo.DeleteLocation(ctx, locationID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete location")
		}
		return nil
	})
}

func (s *service) ListLocations(ctx context.Context, userID uuid.UUID) ([]models.BottleLocation, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListLocations(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations")
	}
	return rows, nil
}

func (s *service) AddBottle(ctx context.Context, userID, wineVintageID uuid.UUID, locationID *uuid.UUID) (*models.Bottle, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if wineVintageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wine vintage id is required")
	}

	exists, err := s.repo.VintageExists(ctx, wineVintageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vintage")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wine vintage not found")
	}
	if locationID != nil {
		if err := s.checkLocationOwnership(ctx, s.repo, userID, *locationID); err != nil {
			return nil, err
		}
	}

	row := &models.Bottle{
		WineVintageID:    wineVintageID,
		UserID:           &userID,
		BottleLocationID: locationID,
	}
	if err := s.repo.CreateBottle(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bottle")
	}
	return row, nil
}

// MoveBottle relocates a bottle within the owner's cellar. A nil location
// takes the bottle out of any bin.
func (s *service) MoveBottle(ctx context.Context, userID, bottleID uuid.UUID, locationID *uuid.UUID) error {
	if userID == uuid.Nil || bottleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and bottle id are required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bottle, err := repo.GetBottle(ctx, bottleID)
		if err != nil {
			return notFoundOrDependency(err, "bottle")
		}
		if bottle.UserID == nil || *bottle.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "bottle belongs to another user")
		}
		if locationID != nil {
			if err := s.checkLocationOwnership(ctx, repo, userID, *locationID); err != nil {
				return err
			}
		}
		if err := repo.UpdateBottleLocation(ctx, bottleID, locationID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "move bottle")
		}
		return nil
	})
}

// MarkDrunk flips the bottle to drunk at the caller-supplied moment. A bottle
// can only be drunk once; repeat calls are a state conflict.
func (s *service) MarkDrunk(ctx context.Context, userID, bottleID uuid.UUID, at time.Time) (*models.Bottle, error) {
	if userID == uuid.Nil || bottleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and bottle id are required")
	}
	if at.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "drunk-at timestamp is required")
	}

	var updated *models.Bottle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bottle, err := repo.GetBottle(ctx, bottleID)
		if err != nil {
			return notFoundOrDependency(err, "bottle")
		}
		if bottle.UserID == nil || *bottle.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "bottle belongs to another user")
		}

		affected, err := repo.MarkBottleDrunk(ctx, bottleID, at.UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark bottle drunk")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bottle already drunk")
		}

		updated, err = repo.GetBottle(ctx, bottleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload bottle")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListBottles(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*BottlePage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	pageSize := pagination.NormalizeLimit(limit)
	rows, err := s.repo.ListBottles(ctx, userID, parsed, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bottles")
	}

	page := &BottlePage{Bottles: rows}
	if len(rows) > pageSize {
		page.Bottles = rows[:pageSize]
		last := page.Bottles[pageSize-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) checkLocationOwnership(ctx context.Context, repo *Repository, userID, locationID uuid.UUID) error {
	location, err := repo.GetLocation(ctx, locationID)
	if err != nil {
		return notFoundOrDependency(err, "location")
	}
	if location.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "location belongs to another user")
	}
	return nil
}

func notFoundOrDependency(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
