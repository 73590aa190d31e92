package cellar

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mariepujol/vinsisters-backend/internal/testdb"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	pkgerrors "github.com/mariepujol/vinsisters-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(conn),
		Tx:   testdb.TxRunner{DB: conn},
	})
	require.NoError(t, err)
	return svc, conn
}

func seedVintage(t *testing.T, conn *gorm.DB) uuid.UUID {
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
	return vintage.ID
}

func TestCreateLocationDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateLocation(ctx, userID, "Kitchen rack", nil)
	require.NoError(t, err)

	_, err = svc.CreateLocation(ctx, userID, "Kitchen rack", nil)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	// same name is fine for another user
	_, err = svc.CreateLocation(ctx, uuid.New(), "Kitchen rack", nil)
	require.NoError(t, err)
}

func TestDeleteLocationKeepsBottles(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	vintageID := seedVintage(t, conn)

	location, err := svc.CreateLocation(ctx, userID, "Cave", nil)
	require.NoError(t, err)
	bottle, err := svc.AddBottle(ctx, userID, vintageID, &location.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLocation(ctx, userID, location.ID))

	var reloaded models.Bottle
	require.NoError(t, conn.First(&reloaded, "id = ?", bottle.ID).Error)
	require.Nil(t, reloaded.BottleLocationID)
}

func TestDeleteLocationForeignUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	location, err := svc.CreateLocation(ctx, uuid.New(), "Cave", nil)
	require.NoError(t, err)

	err = svc.DeleteLocation(ctx, uuid.New(), location.ID)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestMoveBottle(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	vintageID := seedVintage(t, conn)

	bottle, err := svc.AddBottle(ctx, userID, vintageID, nil)
	require.NoError(t, err)
	location, err := svc.CreateLocation(ctx, userID, "Cave", nil)
	require.NoError(t, err)

	require.NoError(t, svc.MoveBottle(ctx, userID, bottle.ID, &location.ID))

	var reloaded models.Bottle
	require.NoError(t, conn.First(&reloaded, "id = ?", bottle.ID).Error)
	require.NotNil(t, reloaded.BottleLocationID)
	require.Equal(t, location.ID, *reloaded.BottleLocationID)

	// cannot move into someone else's bin
	foreign, err := svc.CreateLocation(ctx, uuid.New(), "Cave", nil)
	require.NoError(t, err)
	err = svc.MoveBottle(ctx, userID, bottle.ID, &foreign.ID)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	// cannot move someone else's bottle at all
	err = svc.MoveBottle(ctx, uuid.New(), bottle.ID, nil)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestMarkDrunkOnlyOnce(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	vintageID := seedVintage(t, conn)

	bottle, err := svc.AddBottle(ctx, userID, vintageID, nil)
	require.NoError(t, err)

	_, err = svc.MarkDrunk(ctx, userID, bottle.ID, time.Time{})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	// the caller decides when the bottle was drunk, not the clock
	when := time.Now().UTC().Add(-48 * time.Hour)
	drunk, err := svc.MarkDrunk(ctx, userID, bottle.ID, when)
	require.NoError(t, err)
	require.True(t, drunk.IsDrunk)
	require.NotNil(t, drunk.DrunkAt)
	require.Equal(t, when.Unix(), drunk.DrunkAt.Unix())

	_, err = svc.MarkDrunk(ctx, userID, bottle.ID, time.Now().UTC())
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	var reloaded models.Bottle
	require.NoError(t, conn.First(&reloaded, "id = ?", bottle.ID).Error)
	require.Equal(t, when.Unix(), reloaded.DrunkAt.Unix())
}

func TestAddBottleMissingVintage(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddBottle(context.Background(), uuid.New(), uuid.New(), nil)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestListBottlesPagination(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	vintageID := seedVintage(t, conn)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		bottle := models.Bottle{
			ID:            uuid.New(),
			WineVintageID: vintageID,
			UserID:        &userID,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, conn.Create(&bottle).Error)
	}

	first, err := svc.ListBottles(ctx, userID, "", 3)
	require.NoError(t, err)
	require.Len(t, first.Bottles, 3)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListBottles(ctx, userID, first.NextCursor, 3)
	require.NoError(t, err)
	require.Len(t, second.Bottles, 2)
	require.Empty(t, second.NextCursor)

	// newest first, no overlap between pages
	seen := map[uuid.UUID]bool{}
	for _, b := range append(first.Bottles, second.Bottles...) {
		require.False(t, seen[b.ID])
		seen[b.ID] = true
	}
	require.True(t, first.Bottles[0].CreatedAt.After(second.Bottles[len(second.Bottles)-1].CreatedAt))
}
