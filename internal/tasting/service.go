package tasting

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
	"github.com/mariepujol/vinsisters-backend/pkg/pagination"
)

var scoreMax = decimal.NewFromInt(100)

// NoteInput carries one tasting event. A user may taste the same bottle any
// number of times; every call appends a new note.
type NoteInput struct {
	UserID   uuid.UUID `validate:"required"`
	BottleID uuid.UUID `validate:"required"`
	Note     string    `validate:"required,max=2048"`
	Score    *decimal.Decimal
}

// NotePage is one page of a user's notes plus the cursor for the next one.
type NotePage struct {
	Notes      []models.TastingNote
	NextCursor string
}

// Service exposes the tasting-note contract.
type Service interface {
	AddNote(ctx context.Context, input NoteInput) (*models.TastingNote, error)
	ListBottleNotes(ctx context.Context, bottleID uuid.UUID) ([]models.TastingNote, error)
	ListUserNotes(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*NotePage, error)
}

// ServiceParams groups dependencies for the tasting service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo     *Repository
	validate *validator.Validate
}

// NewService builds a tasting service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tasting repo is required")
	}
	return &service{
		repo:     params.Repo,
		validate: validator.New(),
	}, nil
}

func (s *service) AddNote(ctx context.Context, input NoteInput) (*models.TastingNote, error) {
	input.Note = strings.TrimSpace(input.Note)
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tasting note")
	}
	if input.Score != nil && (input.Score.IsNegative() || input.Score.GreaterThan(scoreMax)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "score must be between 0 and 100")
	}

	exists, err := s.repo.BottleExists(ctx, input.BottleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check bottle")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bottle not found")
	}

	row := &models.TastingNote{
		BottleID: input.BottleID,
		UserID:   input.UserID,
		Note:     input.Note,
		Score:    input.Score,
	}
	if err := s.repo.CreateNote(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tasting note")
	}
	return row, nil
}

func (s *service) ListBottleNotes(ctx context.Context, bottleID uuid.UUID) ([]models.TastingNote, error) {
	if bottleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle id is required")
	}
	rows, err := s.repo.ListBottleNotes(ctx, bottleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bottle notes")
	}
	return rows, nil
}

func (s *service) ListUserNotes(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*NotePage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	pageSize := pagination.NormalizeLimit(limit)
	rows, err := s.repo.ListUserNotes(ctx, userID, parsed, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user notes")
	}

	page := &NotePage{Notes: rows}
	if len(rows) > pageSize {
		page.Notes = rows[:pageSize]
		last := page.Notes[pageSize-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}
