package taxonomy

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
)

// TxRunner executes a function inside one storage transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the naming-hierarchy contract. Upserts are idempotent by
// (name, parent); deletes are restricted while children exist, since taxonomy
// nodes are structural and must never cascade away catalog data.
type Service interface {
	UpsertCountry(ctx context.Context, name string) (*models.Country, error)
	UpsertRegion(ctx context.Context, name string, countryID uuid.UUID) (*models.Region, error)
	UpsertAppellation(ctx context.Context, name string, regionID uuid.UUID) (*models.Appellation, error)
	UpsertSubAppellation(ctx context.Context, name *string, appellationID uuid.UUID) (*models.SubAppellation, error)

	ListRegions(ctx context.Context, countryID uuid.UUID) ([]models.Region, error)
	ListAppellations(ctx context.Context, regionID uuid.UUID) ([]models.Appellation, error)

	DeleteCountry(ctx context.Context, id uuid.UUID) error
	DeleteRegion(ctx context.Context, id uuid.UUID) error
	DeleteAppellation(ctx context.Context, id uuid.UUID) error
	DeleteSubAppellation(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the taxonomy service.
type ServiceParams struct {
	Repo *Repository
	Tx   TxRunner
}

type service struct {
	repo *Repository
	tx   TxRunner
}

// NewService builds a taxonomy service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "taxonomy repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

func (s *service) UpsertCountry(ctx context.Context, name string) (*models.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "country name is required")
	}

	existing, err := s.repo.FindCountryByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load country")
	}

	row := &models.Country{Name: name}
	if err := s.repo.CreateCountry(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			// lost the creation race; the winner's row is the answer
			return s.refetchCountry(ctx, name)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create country")
	}
	return row, nil
}

func (s *service) refetchCountry(ctx context.Context, name string) (*models.Country, error) {
	row, err := s.repo.FindCountryByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload country")
	}
	return row, nil
}

func (s *service) UpsertRegion(ctx context.Context, name string, countryID uuid.UUID) (*models.Region, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region name is required")
	}
	if countryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "country id is required")
	}
	if _, err := s.repo.GetCountry(ctx, countryID); err != nil {
		return nil, notFoundOrDependency(err, "country")
	}

	existing, err := s.repo.FindRegion(ctx, name, countryID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load region")
	}

	row := &models.Region{Name: name, CountryID: countryID}
	if err := s.repo.CreateRegion(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			row, ferr := s.repo.FindRegion(ctx, name, countryID)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "reload region")
			}
			return row, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create region")
	}
	return row, nil
}

func (s *service) UpsertAppellation(ctx context.Context, name string, regionID uuid.UUID) (*models.Appellation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appellation name is required")
	}
	if regionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region id is required")
	}
	if _, err := s.repo.GetRegion(ctx, regionID); err != nil {
		return nil, notFoundOrDependency(err, "region")
	}

	existing, err := s.repo.FindAppellation(ctx, name, regionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appellation")
	}

	row := &models.Appellation{Name: name, RegionID: regionID}
	if err := s.repo.CreateAppellation(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			row, ferr := s.repo.FindAppellation(ctx, name, regionID)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "reload appellation")
			}
			return row, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appellation")
	}
	return row, nil
}

func (s *service) UpsertSubAppellation(ctx context.Context, name *string, appellationID uuid.UUID) (*models.SubAppellation, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-appellation name must be non-empty or nil")
		}
		name = &trimmed
	}
	if appellationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appellation id is required")
	}
	if _, err := s.repo.GetAppellation(ctx, appellationID); err != nil {
		return nil, notFoundOrDependency(err, "appellation")
	}

	existing, err := s.repo.FindSubAppellation(ctx, name, appellationID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-appellation")
	}

	row := &models.SubAppellation{Name: name, AppellationID: appellationID}
	if err := s.repo.CreateSubAppellation(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			row, ferr := s.repo.FindSubAppellation(ctx, name, appellationID)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "reload sub-appellation")
			}
			return row, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sub-appellation")
	}
	return row, nil
}

func (s *service) ListRegions(ctx context.Context, countryID uuid.UUID) ([]models.Region, error) {
	if countryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "country id is required")
	}
	rows, err := s.repo.ListRegions(ctx, countryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list regions")
	}
	return rows, nil
}

func (s *service) ListAppellations(ctx context.Context, regionID uuid.UUID) ([]models.Appellation, error) {
	if regionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region id is required")
	}
	rows, err := s.repo.ListAppellations(ctx, regionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appellations")
	}
	return rows, nil
}

// DeleteCountry removes the node unless regions still reference it. The
// child check and the delete run in one transaction; the FK RESTRICT in the
// schema backs the same rule at the storage layer.
func (s *service) DeleteCountry(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "country id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetCountry(ctx, id); err != nil {
			return notFoundOrDependency(err, "country")
		}
		count, err := repo.CountRegions(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count regions")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "country still has regions")
		}
		if err := repo.DeleteCountry(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete country")
		}
		return nil
	})
}

func (s *service) DeleteRegion(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "region id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetRegion(ctx, id); err != nil {
			return notFoundOrDependency(err, "region")
		}
		count, err := repo.CountAppellations(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count appellations")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "region still has appellations")
		}
		if err := repo.DeleteRegion(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete region")
		}
		return nil
	})
}

func (s *service) DeleteAppellation(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "appellation id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetAppellation(ctx, id); err != nil {
			return notFoundOrDependency(err, "appellation")
		}
		count, err := repo.CountSubAppellations(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count sub-appellations")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "appellation still has sub-appellations")
		}
		if err := repo.DeleteAppellation(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete appellation")
		}
		return nil
	})
}

func (s *service) DeleteSubAppellation(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sub-appellation id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetSubAppellation(ctx, id); err != nil {
			return notFoundOrDependency(err, "sub-appellation")
		}
		count, err := repo.CountWines(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count wines")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "sub-appellation still has wines")
		}
		if err := repo.DeleteSubAppellation(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sub-appellation")
		}
		return nil
	})
}

func notFoundOrDependency(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
