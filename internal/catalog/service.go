package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
)

// Evolution scores are bounded ratings on a 0..100 scale.
var (
	scoreMin = decimal.Zero
	scoreMax = decimal.NewFromInt(100)
)

const (
	vintageMin = 1800
	vintageMax = 2100
)

// TxRunner executes a function inside one storage transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EvolutionScoreInput carries one (user, vintage, year) rating.
type EvolutionScoreInput struct {
	UserID        uuid.UUID
	WineVintageID uuid.UUID
	Year          int
	Score         decimal.Decimal
}

// Service exposes the catalog contract. Get-or-create operations are
// idempotent by natural key; deletes cascade to bottles and scores.
type Service interface {
	GetOrCreateWine(ctx context.Context, name string, subAppellationID uuid.UUID) (*models.Wine, error)
	GetOrCreateVintage(ctx context.Context, wineID uuid.UUID, year int) (*models.WineVintage, error)
	ListVintages(ctx context.Context, wineID uuid.UUID) ([]models.WineVintage, error)

	RecordEvolutionScore(ctx context.Context, input EvolutionScoreInput) (*models.WineVintageEvolutionScore, error)
	ListEvolutionScores(ctx context.Context, userID, wineVintageID uuid.UUID) ([]models.WineVintageEvolutionScore, error)

	DeleteVintage(ctx context.Context, id uuid.UUID) error
	DeleteWine(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo *Repository
	Tx   TxRunner
}

type service struct {
	repo *Repository
	tx   TxRunner
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

func (s *service) GetOrCreateWine(ctx context.Context, name string, subAppellationID uuid.UUID) (*models.Wine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wine name is required")
	}
	if subAppellationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-appellation id is required")
	}

	exists, err := s.repo.SubAppellationExists(ctx, subAppellationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sub-appellation")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sub-appellation not found")
	}

	existing, err := s.repo.FindWine(ctx, name, subAppellationID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wine")
	}

	row := &models.Wine{Name: name, SubAppellationID: subAppellationID}
	if err := s.repo.CreateWine(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			row, ferr := s.repo.FindWine(ctx, name, subAppellationID)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "reload wine")
			}
			return row, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wine")
	}
	return row, nil
}

func (s *service) GetOrCreateVintage(ctx context.Context, wineID uuid.UUID, year int) (*models.WineVintage, error) {
	if wineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wine id is required")
	}
	if year < vintageMin || year > vintageMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vintage year out of range")
	}
	if _, err := s.repo.GetWine(ctx, wineID); err != nil {
		return nil, notFoundOrDependency(err, "wine")
	}

	existing, err := s.repo.FindVintage(ctx, wineID, year)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vintage")
	}

	row := &models.WineVintage{WineID: wineID, Vintage: year}
	if err := s.repo.CreateVintage(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			row, ferr := s.repo.FindVintage(ctx, wineID, year)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "reload vintage")
			}
			return row, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vintage")
	}
	return row, nil
}

func (s *service) ListVintages(ctx context.Context, wineID uuid.UUID) ([]models.WineVintage, error) {
	if wineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wine id is required")
	}
	rows, err := s.repo.ListVintages(ctx, wineID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vintages")
	}
	return rows, nil
}

// RecordEvolutionScore writes the caller's rating for one calendar year of a
// vintage. Re-recording the same year replaces the previous value.
func (s *service) RecordEvolutionScore(ctx context.Context, input EvolutionScoreInput) (*models.WineVintageEvolutionScore, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.WineVintageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wine vintage id is required")
	}
	if input.Year < vintageMin || input.Year > vintageMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "score year out of range")
	}
	if input.Score.LessThan(scoreMin) || input.Score.GreaterThan(scoreMax) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "score must be between 0 and 100")
	}
	if _, err := s.repo.GetVintage(ctx, input.WineVintageID); err != nil {
		return nil, notFoundOrDependency(err, "wine vintage")
	}

	row := &models.WineVintageEvolutionScore{
		WineVintageID: input.WineVintageID,
		UserID:        input.UserID,
		Year:          input.Year,
		Score:         input.Score,
	}
	if err := s.repo.UpsertEvolutionScore(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record evolution score")
	}
	return row, nil
}

func (s *service) ListEvolutionScores(ctx context.Context, userID, wineVintageID uuid.UUID) ([]models.WineVintageEvolutionScore, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if wineVintageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wine vintage id is required")
	}
	rows, err := s.repo.ListEvolutionScores(ctx, userID, wineVintageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list evolution scores")
	}
	return rows, nil
}

// DeleteVintage removes a vintage with everything hanging off it. Children
// are deleted explicitly inside the transaction so the behavior does not
// depend on the storage engine honoring ON DELETE CASCADE.
func (s *service) DeleteVintage(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "wine vintage id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetVintage(ctx, id); err != nil {
			return notFoundOrDependency(err, "wine vintage")
		}
		return deleteVintageTree(ctx, repo, id)
	})
}

// DeleteWine removes a wine and its whole vintage subtree.
func (s *service) DeleteWine(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "wine id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetWine(ctx, id); err != nil {
			return notFoundOrDependency(err, "wine")
		}
		vintages, err := repo.ListVintages(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vintages")
		}
		for _, v := range vintages {
			if err := deleteVintageTree(ctx, repo, v.ID); err != nil {
				return err
			}
		}
		if err := repo.DeleteWine(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wine")
		}
		return nil
	})
}

func deleteVintageTree(ctx context.Context, repo *Repository, id uuid.UUID) error {
	if err := repo.DeleteVintageScores(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete evolution scores")
	}
	if err := repo.DeleteVintageBottles(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete bottles")
	}
	if err := repo.DeleteVintage(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vintage")
	}
	return nil
}

func notFoundOrDependency(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
