package catalog

import (
	"context"
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
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(conn),
		Tx:   testdb.TxRunner{DB: conn},
	})
	require.NoError(t, err)
	return svc, conn
}

func seedSubAppellation(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()
	country := models.Country{ID: uuid.New(), Name: "France"}
	require.NoError(t, conn.Create(&country).Error)
	region := models.Region{ID: uuid.New(), Name: "Burgundy", CountryID: country.ID}
	require.NoError(t, conn.Create(&region).Error)
	app := models.Appellation{ID: uuid.New(), Name: "Côte de Beaune", RegionID: region.ID}
	require.NoError(t, conn.Create(&app).Error)
	sub := models.SubAppellation{ID: uuid.New(), AppellationID: app.ID}
	require.NoError(t, conn.Create(&sub).Error)
	return sub.ID
}

func TestGetOrCreateWineIsIdempotent(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	subID := seedSubAppellation(t, conn)

	first, err := svc.GetOrCreateWine(ctx, "Meursault", subID)
	require.NoError(t, err)

	second, err := svc.GetOrCreateWine(ctx, "Meursault", subID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateWineMissingSubAppellation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetOrCreateWine(context.Background(), "Meursault", uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestGetOrCreateVintage(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	subID := seedSubAppellation(t, conn)

	wine, err := svc.GetOrCreateWine(ctx, "Meursault", subID)
	require.NoError(t, err)

	v2019, err := svc.GetOrCreateVintage(ctx, wine.ID, 2019)
	require.NoError(t, err)

	again, err := svc.GetOrCreateVintage(ctx, wine.ID, 2019)
	require.NoError(t, err)
	require.Equal(t, v2019.ID, again.ID)

	_, err = svc.GetOrCreateVintage(ctx, wine.ID, 1650)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestRecordEvolutionScoreOverwrites(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	subID := seedSubAppellation(t, conn)
	userID := uuid.New()

	wine, err := svc.GetOrCreateWine(ctx, "Meursault", subID)
	require.NoError(t, err)
	vintage, err := svc.GetOrCreateVintage(ctx, wine.ID, 2019)
	require.NoError(t, err)

	_, err = svc.RecordEvolutionScore(ctx, EvolutionScoreInput{
		UserID:        userID,
		WineVintageID: vintage.ID,
		Year:          2024,
		Score:         decimal.NewFromInt(70),
	})
	require.NoError(t, err)

	_, err = svc.RecordEvolutionScore(ctx, EvolutionScoreInput{
		UserID:        userID,
		WineVintageID: vintage.ID,
		Year:          2024,
		Score:         decimal.NewFromInt(85),
	})
	require.NoError(t, err)

	rows, err := svc.ListEvolutionScores(ctx, userID, vintage.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].Score.Equal(decimal.NewFromInt(85)))
}

func TestRecordEvolutionScoreValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	subID := seedSubAppellation(t, conn)

	wine, err := svc.GetOrCreateWine(ctx, "Meursault", subID)
	require.NoError(t, err)
	vintage, err := svc.GetOrCreateVintage(ctx, wine.ID, 2019)
	require.NoError(t, err)

	_, err = svc.RecordEvolutionScore(ctx, EvolutionScoreInput{
		UserID:        uuid.New(),
		WineVintageID: vintage.ID,
		Year:          2024,
		Score:         decimal.NewFromInt(101),
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.RecordEvolutionScore(ctx, EvolutionScoreInput{
		UserID:        uuid.New(),
		WineVintageID: uuid.New(),
		Year:          2024,
		Score:         decimal.NewFromInt(50),
	})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestDeleteVintageCascades(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	subID := seedSubAppellation(t, conn)
	userID := uuid.New()

	wine, err := svc.GetOrCreateWine(ctx, "Meursault", subID)
	require.NoError(t, err)
	vintage, err := svc.GetOrCreateVintage(ctx, wine.ID, 2019)
	require.NoError(t, err)

	bottle := models.Bottle{ID: uuid.New(), WineVintageID: vintage.ID, UserID: &userID}
	require.NoError(t, conn.Create(&bottle).Error)
	_, err = svc.RecordEvolutionScore(ctx, EvolutionScoreInput{
		UserID:        userID,
		WineVintageID: vintage.ID,
		Year:          2024,
		Score:         decimal.NewFromInt(70),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVintage(ctx, vintage.ID))

	var bottles, scores int64
	require.NoError(t, conn.Model(&models.Bottle{}).Where("wine_vintage_id = ?", vintage.ID).Count(&bottles).Error)
	require.NoError(t, conn.Model(&models.WineVintageEvolutionScore{}).Where("wine_vintage_id = ?", vintage.ID).Count(&scores).Error)
	require.Zero(t, bottles)
	require.Zero(t, scores)

	// the wine itself survives
	var wines int64
	require.NoError(t, conn.Model(&models.Wine{}).Where("id = ?", wine.ID).Count(&wines).Error)
	require.EqualValues(t, 1, wines)
}

func TestDeleteWineRemovesVintages(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	subID := seedSubAppellation(t, conn)

	wine, err := svc.GetOrCreateWine(ctx, "Meursault", subID)
	require.NoError(t, err)
	_, err = svc.GetOrCreateVintage(ctx, wine.ID, 2018)
	require.NoError(t, err)
	_, err = svc.GetOrCreateVintage(ctx, wine.ID, 2019)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWine(ctx, wine.ID))

	var vintages int64
	require.NoError(t, conn.Model(&models.WineVintage{}).Where("wine_id = ?", wine.ID).Count(&vintages).Error)
	require.Zero(t, vintages)

	err = svc.DeleteWine(ctx, wine.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
