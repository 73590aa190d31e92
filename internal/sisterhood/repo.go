package sisterhood

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/enums"
)

// Repository encapsulates sisterhood persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateSisterhood(ctx context.Context, row *models.Sisterhood) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetSisterhood(ctx context.Context, id uuid.UUID) (*models.Sisterhood, error) {
	var row models.Sisterhood
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateMembership(ctx context.Context, row *models.UserSisterhood) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetMembership(ctx context.Context, userID, sisterhoodID uuid.UUID) (*models.UserSisterhood, error) {
	var row models.UserSisterhood
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sisterhood_id = ?", userID, sisterhoodID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListMembers(ctx context.Context, sisterhoodID uuid.UUID) ([]models.UserSisterhood, error) {
	var rows []models.UserSisterhood
	err := r.db.WithContext(ctx).
		Where("sisterhood_id = ?", sisterhoodID).
		Order("joined_at").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) SetMemberAdmin(ctx context.Context, userID, sisterhoodID uuid.UUID, isAdmin bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserSisterhood{}).
		Where("user_id = ? AND sisterhood_id = ?", userID, sisterhoodID).
		Update("is_admin", isAdmin)
	return result.RowsAffected, result.Error
}

func (r *Repository) CreateInvitation(ctx context.Context, row *models.SisterhoodInvitation) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetInvitation(ctx context.Context, id uuid.UUID) (*models.SisterhoodInvitation, error) {
	var row models.SisterhoodInvitation
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) FindInvitationByEmail(ctx context.Context, sisterhoodID uuid.UUID, email string) (*models.SisterhoodInvitation, error) {
	var row models.SisterhoodInvitation
	err := r.db.WithContext(ctx).
		Where("sisterhood_id = ? AND invitee_email = ?", sisterhoodID, email).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ReopenInvitation resets a terminal invitation back to pending so the same
// address can be invited again.
func (r *Repository) ReopenInvitation(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.SisterhoodInvitation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          enums.InvitationStatusPending,
			"invitee_user_id": nil,
		}).Error
}

// TransitionInvitation moves an invitation out of pending. The status guard
// in the WHERE clause makes concurrent transitions lose cleanly.
func (r *Repository) TransitionInvitation(ctx context.Context, id uuid.UUID, to enums.InvitationStatus, inviteeUserID *uuid.UUID) (int64, error) {
	updates := map[string]any{"status": to}
	if inviteeUserID != nil {
		updates["invitee_user_id"] = *inviteeUserID
	}
	result := r.db.WithContext(ctx).
		Model(&models.SisterhoodInvitation{}).
		Where("id = ? AND status = ?", id, enums.InvitationStatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *Repository) ListInvitations(ctx context.Context, sisterhoodID uuid.UUID) ([]models.SisterhoodInvitation, error) {
	var rows []models.SisterhoodInvitation
	err := r.db.WithContext(ctx).
		Where("sisterhood_id = ?", sisterhoodID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateSipSession(ctx context.Context, row *models.SipSession) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetSipSession(ctx context.Context, id uuid.UUID) (*models.SipSession, error) {
	var row models.SipSession
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListSipSessions(ctx context.Context, sisterhoodID uuid.UUID) ([]models.SipSession, error) {
	var rows []models.SipSession
	err := r.db.WithContext(ctx).
		Where("sisterhood_id = ?", sisterhoodID).
		Order("scheduled_at").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) GetBottle(ctx context.Context, id uuid.UUID) (*models.Bottle, error) {
	var row models.Bottle
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) AttachBottle(ctx context.Context, row *models.BottleSipSession) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// RevealBottle flips is_revealed to true. The flip is one-way and repeat
// calls are harmless.
func (r *Repository) RevealBottle(ctx context.Context, bottleID, sipSessionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BottleSipSession{}).
		Where("bottle_id = ? AND sip_session_id = ?", bottleID, sipSessionID).
		Update("is_revealed", true)
	return result.RowsAffected, result.Error
}

func (r *Repository) AttachmentExists(ctx context.Context, bottleID, sipSessionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BottleSipSession{}).
		Where("bottle_id = ? AND sip_session_id = ?", bottleID, sipSessionID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) ListSessionBottles(ctx context.Context, sipSessionID uuid.UUID) ([]models.BottleSipSession, error) {
	var rows []models.BottleSipSession
	err := r.db.WithContext(ctx).
		Where("sip_session_id = ?", sipSessionID).
		Order("created_at").
		Find(&rows).Error
	return rows, err
}
