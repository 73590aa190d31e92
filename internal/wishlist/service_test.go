package wishlist

import (
	"context"
	"testing"

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

func TestCreateWishlistDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateWishlist(ctx, userID, "Birthday ideas")
	require.NoError(t, err)

	_, err = svc.CreateWishlist(ctx, userID, "Birthday ideas")
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = svc.CreateWishlist(ctx, uuid.New(), "Birthday ideas")
	require.NoError(t, err)
}

func TestAddWishIsIdempotent(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	vintageID := seedVintage(t, conn)

	list, err := svc.CreateWishlist(ctx, userID, "Birthday ideas")
	require.NoError(t, err)

	require.NoError(t, svc.AddWish(ctx, userID, list.ID, vintageID))
	require.NoError(t, svc.AddWish(ctx, userID, list.ID, vintageID))

	wishes, err := svc.ListWishes(ctx, userID, list.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, wishes.Wishes, 1)
}

func TestAddWishGuards(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	vintageID := seedVintage(t, conn)

	list, err := svc.CreateWishlist(ctx, userID, "Birthday ideas")
	require.NoError(t, err)

	err = svc.AddWish(ctx, uuid.New(), list.ID, vintageID)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	err = svc.AddWish(ctx, userID, list.ID, uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	err = svc.AddWish(ctx, userID, uuid.New(), vintageID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestRemoveWish(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	vintageID := seedVintage(t, conn)

	list, err := svc.CreateWishlist(ctx, userID, "Birthday ideas")
	require.NoError(t, err)
	require.NoError(t, svc.AddWish(ctx, userID, list.ID, vintageID))

	require.NoError(t, svc.RemoveWish(ctx, userID, list.ID, vintageID))

	err = svc.RemoveWish(ctx, userID, list.ID, vintageID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestDeleteWishlistRemovesWishes(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	vintageID := seedVintage(t, conn)

	list, err := svc.CreateWishlist(ctx, userID, "Birthday ideas")
	require.NoError(t, err)
	require.NoError(t, svc.AddWish(ctx, userID, list.ID, vintageID))

	require.NoError(t, svc.DeleteWishlist(ctx, userID, list.ID))

	var wishes int64
	require.NoError(t, conn.Model(&models.WineVintageWish{}).Where("wishlist_id = ?", list.ID).Count(&wishes).Error)
	require.Zero(t, wishes)

	lists, err := svc.ListWishlists(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, lists)
}
