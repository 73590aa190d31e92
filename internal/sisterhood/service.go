package sisterhood

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/enums"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
	"github.com/mariepujol/vinsisters-backend/pkg/logger"
)

// TxRunner executes a function inside one storage transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SipSessionInput carries the fields for scheduling a tasting event.
type SipSessionInput struct {
	SisterhoodID   uuid.UUID `validate:"required"`
	Name           string    `validate:"required,max=256"`
	Description    *string
	ScheduledAt    time.Time `validate:"required"`
	Location       *string
	FoodSuggestion *string
}

// Service exposes the sisterhood contract: groups, memberships, the
// invitation lifecycle and sip sessions with their blind-tasting bottles.
type Service interface {
	Create(ctx context.Context, creatorUserID uuid.UUID, name string, description *string) (*models.Sisterhood, error)
	ListMembers(ctx context.Context, sisterhoodID uuid.UUID) ([]models.UserSisterhood, error)
	PromoteAdmin(ctx context.Context, sisterhoodID, actorUserID, targetUserID uuid.UUID) error

	Invite(ctx context.Context, sisterhoodID, inviterUserID uuid.UUID, inviteeEmail string) (*models.SisterhoodInvitation, error)
	AcceptInvitation(ctx context.Context, invitationID, userID uuid.UUID) error
	DeclineInvitation(ctx context.Context, invitationID uuid.UUID) error
	ExpireInvitation(ctx context.Context, invitationID uuid.UUID) error
	ListInvitations(ctx context.Context, sisterhoodID uuid.UUID) ([]models.SisterhoodInvitation, error)

	ScheduleSipSession(ctx context.Context, input SipSessionInput) (*models.SipSession, error)
	ListSipSessions(ctx context.Context, sisterhoodID uuid.UUID) ([]models.SipSession, error)
	AttachBottle(ctx context.Context, sipSessionID, bottleID, actorUserID uuid.UUID) error
	RevealBottle(ctx context.Context, sipSessionID, bottleID uuid.UUID) error
	ListSessionBottles(ctx context.Context, sipSessionID uuid.UUID) ([]models.BottleSipSession, error)
}

// ServiceParams groups dependencies for the sisterhood service.
type ServiceParams struct {
	Logger *logger.Logger
	Repo   *Repository
	Tx     TxRunner
}

type service struct {
	logg     *logger.Logger
	repo     *Repository
	tx       TxRunner
	validate *validator.Validate
}

// NewService builds a sisterhood service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sisterhood repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		logg:     params.Logger,
		repo:     params.Repo,
		tx:       params.Tx,
		validate: validator.New(),
	}, nil
}

// Create opens a new sisterhood and enrolls the creator as its first admin in
// the same transaction.
func (s *service) Create(ctx context.Context, creatorUserID uuid.UUID, name string, description *string) (*models.Sisterhood, error) {
	name = strings.TrimSpace(name)
	if creatorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator user id is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sisterhood name is required")
	}

	row := &models.Sisterhood{Name: name, Description: description}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateSisterhood(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sisterhood name already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sisterhood")
		}
		membership := &models.UserSisterhood{
			UserID:       creatorUserID,
			SisterhoodID: row.ID,
			IsAdmin:      true,
			JoinedAt:     time.Now().UTC(),
		}
		if err := repo.CreateMembership(ctx, membership); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
		}
		return nil
	})
	if err != nil {
		s.logStorageFailure(ctx, "create sisterhood", err)
		return nil, err
	}
	s.logg.Info(s.logg.WithSisterhoodID(ctx, row.ID.String()), "sisterhood created")
	return row, nil
}

func (s *service) ListMembers(ctx context.Context, sisterhoodID uuid.UUID) ([]models.UserSisterhood, error) {
	if sisterhoodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sisterhood id is required")
	}
	rows, err := s.repo.ListMembers(ctx, sisterhoodID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return rows, nil
}

// PromoteAdmin grants admin to a member. Only an existing admin may promote.
func (s *service) PromoteAdmin(ctx context.Context, sisterhoodID, actorUserID, targetUserID uuid.UUID) error {
	if sisterhoodID == uuid.Nil || actorUserID == uuid.Nil || targetUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sisterhood, actor and target ids are required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		actor, err := repo.GetMembership(ctx, actorUserID, sisterhoodID)
		if err != nil {
			return notFoundOrDependency(err, "actor membership")
		}
		if !actor.IsAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can promote members")
		}
		affected, err := repo.SetMemberAdmin(ctx, targetUserID, sisterhoodID, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote member")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "target membership not found")
		}
		return nil
	})
}

// Invite opens (or reopens) an invitation for an email address. A pending
// invitation for the same address is a conflict; a declined or expired one is
// reset to pending.
func (s *service) Invite(ctx context.Context, sisterhoodID, inviterUserID uuid.UUID, inviteeEmail string) (*models.SisterhoodInvitation, error) {
	inviteeEmail = strings.ToLower(strings.TrimSpace(inviteeEmail))
	if sisterhoodID == uuid.Nil || inviterUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sisterhood id and inviter id are required")
	}
	if err := s.validate.Var(inviteeEmail, "required,email"); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invitee email")
	}

	if _, err := s.repo.GetMembership(ctx, inviterUserID, sisterhoodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inviter is not a member")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inviter membership")
	}

	var out *models.SisterhoodInvitation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindInvitationByEmail(ctx, sisterhoodID, inviteeEmail)
		if err == nil {
			switch existing.Status {
			case enums.InvitationStatusPending:
				return pkgerrors.New(pkgerrors.CodeConflict, "invitation already pending")
			case enums.InvitationStatusAccepted:
				return pkgerrors.New(pkgerrors.CodeConflict, "invitee already accepted")
			default:
				if err := repo.ReopenInvitation(ctx, existing.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen invitation")
				}
				existing.Status = enums.InvitationStatusPending
				existing.InviteeUserID = nil
				out = existing
				return nil
			}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
		}

		row := &models.SisterhoodInvitation{
			SisterhoodID: sisterhoodID,
			InviteeEmail: inviteeEmail,
			Status:       enums.InvitationStatusPending,
		}
		if err := repo.CreateInvitation(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "invitation already pending")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invitation")
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptInvitation resolves a pending invitation to a user and enrolls them,
// all in one transaction. Accepting a non-pending invitation is a state
// conflict.
func (s *service) AcceptInvitation(ctx context.Context, invitationID, userID uuid.UUID) error {
	if invitationID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invitation id and user id are required")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invitation, err := repo.GetInvitation(ctx, invitationID)
		if err != nil {
			return notFoundOrDependency(err, "invitation")
		}

		affected, err := repo.TransitionInvitation(ctx, invitationID, enums.InvitationStatusAccepted, &userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept invitation")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invitation is no longer pending")
		}

		if _, err := repo.GetMembership(ctx, userID, invitation.SisterhoodID); err == nil {
			// already enrolled; the invitation is settled either way
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
		}

		membership := &models.UserSisterhood{
			UserID:       userID,
			SisterhoodID: invitation.SisterhoodID,
			JoinedAt:     time.Now().UTC(),
		}
		if err := repo.CreateMembership(ctx, membership); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
		}
		return nil
	})
	if err != nil {
		s.logStorageFailure(ctx, "accept invitation", err)
		return err
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "invitation accepted")
	return nil
}

func (s *service) DeclineInvitation(ctx context.Context, invitationID uuid.UUID) error {
	return s.closeInvitation(ctx, invitationID, enums.InvitationStatusDeclined)
}

func (s *service) ExpireInvitation(ctx context.Context, invitationID uuid.UUID) error {
	return s.closeInvitation(ctx, invitationID, enums.InvitationStatusExpired)
}

func (s *service) closeInvitation(ctx context.Context, invitationID uuid.UUID, to enums.InvitationStatus) error {
	if invitationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invitation id is required")
	}
	if _, err := s.repo.GetInvitation(ctx, invitationID); err != nil {
		return notFoundOrDependency(err, "invitation")
	}
	affected, err := s.repo.TransitionInvitation(ctx, invitationID, to, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close invitation")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invitation is no longer pending")
	}
	return nil
}

func (s *service) ListInvitations(ctx context.Context, sisterhoodID uuid.UUID) ([]models.SisterhoodInvitation, error) {
	if sisterhoodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sisterhood id is required")
	}
	rows, err := s.repo.ListInvitations(ctx, sisterhoodID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invitations")
	}
	return rows, nil
}

func (s *service) ScheduleSipSession(ctx context.Context, input SipSessionInput) (*models.SipSession, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sip session")
	}
	if _, err := s.repo.GetSisterhood(ctx, input.SisterhoodID); err != nil {
		return nil, notFoundOrDependency(err, "sisterhood")
	}

	row := &models.SipSession{
		SisterhoodID:   input.SisterhoodID,
		Name:           input.Name,
		Description:    input.Description,
		ScheduledAt:    input.ScheduledAt,
		Location:       input.Location,
		FoodSuggestion: input.FoodSuggestion,
	}
	if err := s.repo.CreateSipSession(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sip session")
	}
	return row, nil
}

func (s *service) ListSipSessions(ctx context.Context, sisterhoodID uuid.UUID) ([]models.SipSession, error) {
	if sisterhoodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sisterhood id is required")
	}
	rows, err := s.repo.ListSipSessions(ctx, sisterhoodID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sip sessions")
	}
	return rows, nil
}

// AttachBottle brings a bottle to a session, unrevealed. Only the bottle's
// owner may bring it, and a bottle can be attached to a session once.
func (s *service) AttachBottle(ctx context.Context, sipSessionID, bottleID, actorUserID uuid.UUID) error {
	if sipSessionID == uuid.Nil || bottleID == uuid.Nil || actorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session, bottle and actor ids are required")
	}
	if _, err := s.repo.GetSipSession(ctx, sipSessionID); err != nil {
		return notFoundOrDependency(err, "sip session")
	}
	bottle, err := s.repo.GetBottle(ctx, bottleID)
	if err != nil {
		return notFoundOrDependency(err, "bottle")
	}
	if bottle.UserID == nil || *bottle.UserID != actorUserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "bottle belongs to another user")
	}

	row := &models.BottleSipSession{BottleID: bottleID, SipSessionID: sipSessionID}
	if err := s.repo.AttachBottle(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "bottle already attached to session")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach bottle")
	}
	return nil
}

// RevealBottle lifts the blind on an attached bottle. Revealing twice is a
// no-op, never an error.
func (s *service) RevealBottle(ctx context.Context, sipSessionID, bottleID uuid.UUID) error {
	if sipSessionID == uuid.Nil || bottleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id and bottle id are required")
	}
	affected, err := s.repo.RevealBottle(ctx, bottleID, sipSessionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reveal bottle")
	}
	if affected == 0 {
		// either already revealed or never attached; only the latter errors
		attached, err := s.repo.AttachmentExists(ctx, bottleID, sipSessionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check attachment")
		}
		if !attached {
			return pkgerrors.New(pkgerrors.CodeNotFound, "bottle is not attached to session")
		}
	}
	return nil
}

func (s *service) ListSessionBottles(ctx context.Context, sipSessionID uuid.UUID) ([]models.BottleSipSession, error) {
	if sipSessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sip session id is required")
	}
	rows, err := s.repo.ListSessionBottles(ctx, sipSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list session bottles")
	}
	return rows, nil
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
