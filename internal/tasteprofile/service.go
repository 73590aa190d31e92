package tasteprofile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
	"github.com/mariepujol/vinsisters-backend/pkg/logger"
	"github.com/mariepujol/vinsisters-backend/pkg/metrics"
	"github.com/mariepujol/vinsisters-backend/pkg/pagination"
)

// TxRunner executes a function inside one storage transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProfileInput carries one new taste-profile version.
type ProfileInput struct {
	UserID  uuid.UUID `validate:"required"`
	Profile string    `validate:"required,max=4096"`
	Summary string    `validate:"required,max=512"`
}

// WineCandidate is one wine under a suggested appellation.
type WineCandidate struct {
	WineID  uuid.UUID
	Vintage *string
}

// AppellationCandidate is one scored appellation with its wines.
type AppellationCandidate struct {
	SubAppellationID uuid.UUID
	Reason           *string
	Wines            []WineCandidate
}

// ProfilePage is one page of a user's profile versions plus the cursor for
// the next one.
type ProfilePage struct {
	Profiles   []models.TasteProfile
	NextCursor string
}

// Suggestions is the materialized snapshot for one profile version.
type Suggestions struct {
	Appellations []SuggestedAppellationView
}

// SuggestedAppellationView pairs a stored appellation suggestion with its wines.
type SuggestedAppellationView struct {
	Appellation models.SuggestedAppellation
	Wines       []models.SuggestedWine
}

// Service exposes the taste-profile contract. Profiles are versioned and
// append-only: activating a new one archives the previous, and suggestion
// snapshots always belong to exactly one profile version.
type Service interface {
	ActivateProfile(ctx context.Context, input ProfileInput) (*models.TasteProfile, error)
	GetActiveProfile(ctx context.Context, userID uuid.UUID) (*models.TasteProfile, error)
	ListProfileHistory(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*ProfilePage, error)
	DeleteProfile(ctx context.Context, userID, profileID uuid.UUID) error

	GenerateSuggestions(ctx context.Context, profileID uuid.UUID, candidates []AppellationCandidate) error
	ListSuggestions(ctx context.Context, profileID uuid.UUID) (*Suggestions, error)
}

// ServiceParams groups dependencies for the taste-profile service. Metrics
// may be nil.
type ServiceParams struct {
	Logger  *logger.Logger
	Repo    *Repository
	Tx      TxRunner
	Metrics *metrics.DomainMetrics
}

type service struct {
	logg     *logger.Logger
	repo     *Repository
	tx       TxRunner
	metrics  *metrics.DomainMetrics
	validate *validator.Validate
}

// NewService builds a taste-profile service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "taste profile repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		logg:     params.Logger,
		repo:     params.Repo,
		tx:       params.Tx,
		metrics:  params.Metrics,
		validate: validator.New(),
	}, nil
}

// ActivateProfile inserts a new active version and archives the previous one
// in the same transaction. When two activations race, the partial unique
// index on (user_id) WHERE in_use lets exactly one commit; the loser gets a
// conflict.
func (s *service) ActivateProfile(ctx context.Context, input ProfileInput) (*models.TasteProfile, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveDuration("activate_profile", time.Since(started)) }()

	input.Profile = strings.TrimSpace(input.Profile)
	input.Summary = strings.TrimSpace(input.Summary)
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid taste profile")
	}

	row := &models.TasteProfile{
		UserID:  input.UserID,
		Profile: input.Profile,
		Summary: input.Summary,
		InUse:   true,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ArchiveActiveProfile(ctx, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive active profile")
		}
		if err := repo.CreateProfile(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "") {
				s.metrics.IncConflict("activate_profile", "activation_race")
				return pkgerrors.New(pkgerrors.CodeConflict, "another activation won")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
		}
		return nil
	})
	if err != nil {
		s.logStorageFailure(ctx, "activate profile", err)
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, input.UserID.String()), "taste profile activated")
	return row, nil
}

func (s *service) GetActiveProfile(ctx context.Context, userID uuid.UUID) (*models.TasteProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	row, err := s.repo.GetActiveProfile(ctx, userID)
	if err != nil {
		return nil, notFoundOrDependency(err, "active profile")
	}
	return row, nil
}

func (s *service) ListProfileHistory(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*ProfilePage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	pageSize := pagination.NormalizeLimit(limit)
	rows, err := s.repo.ListProfiles(ctx, userID, parsed, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profiles")
	}

	page := &ProfilePage{Profiles: rows}
	if len(rows) > pageSize {
		page.Profiles = rows[:pageSize]
		last := page.Profiles[pageSize-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// DeleteProfile removes a profile version and its suggestion snapshot.
func (s *service) DeleteProfile(ctx context.Context, userID, profileID uuid.UUID) error {
	if userID == uuid.Nil || profileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and profile id are required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := repo.GetProfile(ctx, profileID)
		if err != nil {
			return notFoundOrDependency(err, "profile")
		}
		if profile.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "profile belongs to another user")
		}
		if err := repo.DeleteProfileSuggestions(ctx, profileID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete suggestions")
		}
		if err := repo.DeleteProfile(ctx, profileID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete profile")
		}
		return nil
	})
}

// GenerateSuggestions replaces the snapshot for an active profile version.
// The delete and the inserts commit together, so readers never observe a
// half-written snapshot. Generating against an archived version is a state
// conflict.
func (s *service) GenerateSuggestions(ctx context.Context, profileID uuid.UUID, candidates []AppellationCandidate) error {
	started := time.Now()
	defer func() { s.metrics.ObserveDuration("generate_suggestions", time.Since(started)) }()

	if profileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if err := s.validateCandidates(ctx, candidates); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := repo.GetProfile(ctx, profileID)
		if err != nil {
			return notFoundOrDependency(err, "profile")
		}
		if !profile.InUse {
			s.metrics.IncConflict("generate_suggestions", "archived_profile")
			return pkgerrors.New(pkgerrors.CodeStateConflict, "profile version is archived")
		}

		if err := repo.DeleteProfileSuggestions(ctx, profileID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear previous snapshot")
		}
		for _, candidate := range candidates {
			appellation := &models.SuggestedAppellation{
				TasteProfileID:   profileID,
				SubAppellationID: candidate.SubAppellationID,
				Reason:           candidate.Reason,
			}
			if err := repo.CreateSuggestedAppellation(ctx, appellation); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create suggested appellation")
			}
			for _, wine := range candidate.Wines {
				row := &models.SuggestedWine{
					SuggestedAppellationID: appellation.ID,
					WineID:                 wine.WineID,
					Vintage:                wine.Vintage,
				}
				if err := repo.CreateSuggestedWine(ctx, row); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create suggested wine")
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logStorageFailure(ctx, "generate suggestions", err)
	}
	return err
}

// validateCandidates collects every problem in the batch instead of stopping
// at the first one.
func (s *service) validateCandidates(ctx context.Context, candidates []AppellationCandidate) error {
	if len(candidates) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one candidate is required")
	}

	var problems error
	seenSubs := map[uuid.UUID]bool{}
	for i, candidate := range candidates {
		if candidate.SubAppellationID == uuid.Nil {
			problems = multierr.Append(problems, fmt.Errorf("candidate %d: sub-appellation id is required", i))
			continue
		}
		if seenSubs[candidate.SubAppellationID] {
			problems = multierr.Append(problems, fmt.Errorf("candidate %d: duplicate sub-appellation %s", i, candidate.SubAppellationID))
		}
		seenSubs[candidate.SubAppellationID] = true

		exists, err := s.repo.SubAppellationExists(ctx, candidate.SubAppellationID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sub-appellation")
		}
		if !exists {
			problems = multierr.Append(problems, fmt.Errorf("candidate %d: sub-appellation %s not found", i, candidate.SubAppellationID))
		}

		seenWines := map[uuid.UUID]bool{}
		for j, wine := range candidate.Wines {
			if wine.WineID == uuid.Nil {
				problems = multierr.Append(problems, fmt.Errorf("candidate %d wine %d: wine id is required", i, j))
				continue
			}
			if seenWines[wine.WineID] {
				problems = multierr.Append(problems, fmt.Errorf("candidate %d wine %d: duplicate wine %s", i, j, wine.WineID))
			}
			seenWines[wine.WineID] = true

			exists, err := s.repo.WineExists(ctx, wine.WineID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wine")
			}
			if !exists {
				problems = multierr.Append(problems, fmt.Errorf("candidate %d wine %d: wine %s not found", i, j, wine.WineID))
			}
		}
	}
	if problems != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, problems, "invalid suggestion candidates")
	}
	return nil
}

func (s *service) ListSuggestions(ctx context.Context, profileID uuid.UUID) (*Suggestions, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if _, err := s.repo.GetProfile(ctx, profileID); err != nil {
		return nil, notFoundOrDependency(err, "profile")
	}

	appellations, err := s.repo.ListSuggestedAppellations(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suggested appellations")
	}

	out := &Suggestions{Appellations: make([]SuggestedAppellationView, 0, len(appellations))}
	for _, appellation := range appellations {
		wines, err := s.repo.ListSuggestedWines(ctx, appellation.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suggested wines")
		}
		out.Appellations = append(out.Appellations, SuggestedAppellationView{
			Appellation: appellation,
			Wines:       wines,
		})
	}
	return out, nil
}

// logStorageFailure records the flattened error chain for retryable storage
// faults; constraint names and driver codes only live inside the chain.
func (s *service) logStorageFailure(ctx context.Context, op string, err error) {
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		return
	}
	s.logg.Error(s.logg.WithField(ctx, "error_dump", pkgerrors.Dump(err)), op+" failed", err)
}

func notFoundOrDependency(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
