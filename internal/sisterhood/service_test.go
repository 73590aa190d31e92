package sisterhood

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/internal/testdb"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/enums"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
	"github.com/mariepujol/vinsisters-backend/pkg/logger"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	svc, err := NewService(ServiceParams{
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repo:   NewRepository(conn),
		Tx:     testdb.TxRunner{DB: conn},
	})
	require.NoError(t, err)
	return svc, conn
}

func seedBottle(t *testing.T, conn *gorm.DB, userID uuid.UUID) uuid.UUID {
	t.Helper()
	country := models.Country{ID: uuid.New(), Name: "France"}
	require.NoError(t, conn.Create(&country).Error)
	region := models.Region{ID: uuid.New(), Name: "Burgundy", CountryID: country.ID}
	require.NoError(t, conn.Create(&region).Error)
	app := models.Appellation{ID: uuid.New(), Name: "Côte de Beaune", RegionID: region.ID}
	require.NoError(t, conn.Create(&app).Error)
	sub := models.SubAppellation{ID: uuid.New(), AppellationID: app.ID}
	require.NoError(t, conn.Create(&sub).Error)
	wine := models.Wine{ID: uuid.New(), Name: "Meursault", SubAppellationID: sub.ID}
	require.NoError(t, conn.Create(&wine).Error)
	vintage := models.WineVintage{ID: uuid.New(), WineID: wine.ID, Vintage: 2019}
	require.NoError(t, conn.Create(&vintage).Error)
	bottle := models.Bottle{ID: uuid.New(), WineVintageID: vintage.ID, UserID: &userID}
	require.NoError(t, conn.Create(&bottle).Error)
	return bottle.ID
}

func TestCreateEnrollsCreatorAsAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()

	group, err := svc.Create(ctx, creator, "Les Goûteuses", nil)
	require.NoError(t, err)

	members, err := svc.ListMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, creator, members[0].UserID)
	require.True(t, members[0].IsAdmin)

	_, err = svc.Create(ctx, uuid.New(), "Les Goûteuses", nil)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestInvitationLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()

	group, err := svc.Create(ctx, creator, "Les Goûteuses", nil)
	require.NoError(t, err)

	invitation, err := svc.Invite(ctx, group.ID, creator, "amelie@example.com")
	require.NoError(t, err)
	require.Equal(t, enums.InvitationStatusPending, invitation.Status)

	// duplicate pending invite is rejected
	_, err = svc.Invite(ctx, group.ID, creator, "Amelie@Example.com")
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	invitee := uuid.New()
	require.NoError(t, svc.AcceptInvitation(ctx, invitation.ID, invitee))

	members, err := svc.ListMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	// accept is not repeatable
	err = svc.AcceptInvitation(ctx, invitation.ID, invitee)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestAcceptInvitationMissing(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.AcceptInvitation(context.Background(), uuid.New(), uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestInviteRequiresMembershipAndValidEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()

	group, err := svc.Create(ctx, creator, "Les Goûteuses", nil)
	require.NoError(t, err)

	_, err = svc.Invite(ctx, group.ID, uuid.New(), "amelie@example.com")
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	_, err = svc.Invite(ctx, group.ID, creator, "not-an-email")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestDeclineThenReinvite(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()

	group, err := svc.Create(ctx, creator, "Les Goûteuses", nil)
	require.NoError(t, err)

	invitation, err := svc.Invite(ctx, group.ID, creator, "amelie@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.DeclineInvitation(ctx, invitation.ID))

	// declining again is a state conflict
	err = svc.DeclineInvitation(ctx, invitation.ID)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	// a declined address can be invited again
	reopened, err := svc.Invite(ctx, group.ID, creator, "amelie@example.com")
	require.NoError(t, err)
	require.Equal(t, invitation.ID, reopened.ID)
	require.Equal(t, enums.InvitationStatusPending, reopened.Status)
}

func TestExpireInvitation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()

	group, err := svc.Create(ctx, creator, "Les Goûteuses", nil)
	require.NoError(t, err)
	invitation, err := svc.Invite(ctx, group.ID, creator, "amelie@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.ExpireInvitation(ctx, invitation.ID))

	var reloaded models.SisterhoodInvitation
	require.NoError(t, conn.First(&reloaded, "id = ?", invitation.ID).Error)
	require.Equal(t, enums.InvitationStatusExpired, reloaded.Status)

	err = svc.AcceptInvitation(ctx, invitation.ID, uuid.New())
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestPromoteAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()

	group, err := svc.Create(ctx, creator, "Les Goûteuses", nil)
	require.NoError(t, err)

	invitation, err := svc.Invite(ctx, group.ID, creator, "amelie@example.com")
	require.NoError(t, err)
	member := uuid.New()
	require.NoError(t, svc.AcceptInvitation(ctx, invitation.ID, member))

	// non-admin member cannot promote
	err = svc.PromoteAdmin(ctx, group.ID, member, member)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	require.NoError(t, svc.PromoteAdmin(ctx, group.ID, creator, member))

	members, err := svc.ListMembers(ctx, group.ID)
	require.NoError(t, err)
	for _, m := range members {
		require.True(t, m.IsAdmin)
	}

	err = svc.PromoteAdmin(ctx, group.ID, creator, uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestSipSessionBottles(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()
	bottleID := seedBottle(t, conn, creator)

	group, err := svc.Create(ctx, creator, "Les Goûteuses", nil)
	require.NoError(t, err)

	session, err := svc.ScheduleSipSession(ctx, SipSessionInput{
		SisterhoodID: group.ID,
		Name:         "Blind chardonnay night",
		ScheduledAt:  time.Now().UTC().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, svc.AttachBottle(ctx, session.ID, bottleID, creator))

	// the same bottle cannot be brought twice
	err = svc.AttachBottle(ctx, session.ID, bottleID, creator)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	// only the owner brings the bottle
	err = svc.AttachBottle(ctx, session.ID, bottleID, uuid.New())
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	bottles, err := svc.ListSessionBottles(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, bottles, 1)
	require.False(t, bottles[0].IsRevealed)

	require.NoError(t, svc.RevealBottle(ctx, session.ID, bottleID))
	// revealing again stays a no-op
	require.NoError(t, svc.RevealBottle(ctx, session.ID, bottleID))

	bottles, err = svc.ListSessionBottles(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, bottles[0].IsRevealed)

	err = svc.RevealBottle(ctx, session.ID, uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
