package tasting

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/internal/testdb"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
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

func TestAddNoteRepeatTastingsAllowed(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bottleID := seedBottle(t, conn, userID)

	score := decimal.NewFromInt(88)
	_, err := svc.AddNote(ctx, NoteInput{UserID: userID, BottleID: bottleID, Note: "Taut, citrus, long finish", Score: &score})
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, NoteInput{UserID: userID, BottleID: bottleID, Note: "Opened up after an hour"})
	require.NoError(t, err)

	rows, err := svc.ListBottleNotes(ctx, bottleID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestAddNoteValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bottleID := seedBottle(t, conn, userID)

	_, err := svc.AddNote(ctx, NoteInput{UserID: userID, BottleID: bottleID, Note: "   "})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.AddNote(ctx, NoteInput{UserID: userID, BottleID: bottleID, Note: strings.Repeat("x", 2049)})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	bad := decimal.NewFromInt(120)
	_, err = svc.AddNote(ctx, NoteInput{UserID: userID, BottleID: bottleID, Note: "ok", Score: &bad})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.AddNote(ctx, NoteInput{UserID: userID, BottleID: uuid.New(), Note: "ok"})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestListUserNotesPagination(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bottleID := seedBottle(t, conn, userID)

	for i := 0; i < 4; i++ {
		_, err := svc.AddNote(ctx, NoteInput{UserID: userID, BottleID: bottleID, Note: "tasting"})
		require.NoError(t, err)
	}

	first, err := svc.ListUserNotes(ctx, userID, "", 3)
	require.NoError(t, err)
	require.Len(t, first.Notes, 3)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListUserNotes(ctx, userID, first.NextCursor, 3)
	require.NoError(t, err)
	require.Len(t, second.Notes, 1)
	require.Empty(t, second.NextCursor)
}
