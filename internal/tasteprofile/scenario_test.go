package tasteprofile

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mariepujol/vinsisters-backend/internal/catalog"
	"github.com/mariepujol/vinsisters-backend/internal/cellar"
	"github.com/mariepujol/vinsisters-backend/internal/taxonomy"
	"github.com/mariepujol/vinsisters-backend/internal/testdb"
	"github.com/mariepujol/vinsisters-backend/pkg/db/models"
	"github.com/mariepujol/vinsisters-backend/pkg/logger"
)

// Walks the whole chain from an empty database to a recommendation snapshot:
// taxonomy, wine, vintage, a bottle in a bin, then a fresh profile with one
// suggested appellation and one suggested wine pointing at it.
func TestSuggestionFlowFromEmptyDatabase(t *testing.T) {
	conn := testdb.Open(t)
	ctx := context.Background()
	tx := testdb.TxRunner{DB: conn}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	taxonomySvc, err := taxonomy.NewService(taxonomy.ServiceParams{Repo: taxonomy.NewRepository(conn), Tx: tx})
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.ServiceParams{Repo: catalog.NewRepository(conn), Tx: tx})
	require.NoError(t, err)
	cellarSvc, err := cellar.NewService(cellar.ServiceParams{Repo: cellar.NewRepository(conn), Tx: tx})
	require.NoError(t, err)
	profileSvc, err := NewService(ServiceParams{Logger: logg, Repo: NewRepository(conn), Tx: tx})
	require.NoError(t, err)

	userID := uuid.New()

	country, err := taxonomySvc.UpsertCountry(ctx, "France")
	require.NoError(t, err)
	region, err := taxonomySvc.UpsertRegion(ctx, "Burgundy", country.ID)
	require.NoError(t, err)
	app, err := taxonomySvc.UpsertAppellation(ctx, "Côte de Beaune", region.ID)
	require.NoError(t, err)
	sub, err := taxonomySvc.UpsertSubAppellation(ctx, nil, app.ID)
	require.NoError(t, err)

	wine, err := catalogSvc.GetOrCreateWine(ctx, "Meursault", sub.ID)
	require.NoError(t, err)
	vintage, err := catalogSvc.GetOrCreateVintage(ctx, wine.ID, 2018)
	require.NoError(t, err)

	location, err := cellarSvc.CreateLocation(ctx, userID, "Cellar A", nil)
	require.NoError(t, err)
	_, err = cellarSvc.AddBottle(ctx, userID, vintage.ID, &location.ID)
	require.NoError(t, err)

	profile, err := profileSvc.ActivateProfile(ctx, ProfileInput{
		UserID:  userID,
		Profile: "loves buttery whites",
		Summary: "Burgundy whites",
	})
	require.NoError(t, err)

	require.NoError(t, profileSvc.GenerateSuggestions(ctx, profile.ID, []AppellationCandidate{{
		SubAppellationID: sub.ID,
		Wines:            []WineCandidate{{WineID: wine.ID}},
	}}))

	var appellations []models.SuggestedAppellation
	require.NoError(t, conn.Find(&appellations).Error)
	require.Len(t, appellations, 1)
	require.Equal(t, profile.ID, appellations[0].TasteProfileID)
	require.Equal(t, sub.ID, appellations[0].SubAppellationID)

	var wines []models.SuggestedWine
	require.NoError(t, conn.Find(&wines).Error)
	require.Len(t, wines, 1)
	require.Equal(t, appellations[0].ID, wines[0].SuggestedAppellationID)
	require.Equal(t, wine.ID, wines[0].WineID)
}
