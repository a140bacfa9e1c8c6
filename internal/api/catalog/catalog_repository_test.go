package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

var siteTestColumns = []string{
	"id", "name", "city", "governorate", "description", "embedding",
	"activities", "open_time", "close_time", "average_visit_hours",
	"cost_egp", "age_limit", "latitude", "longitude",
}

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRepository(mockPool, logger), mockPool
}

func TestGetSites(t *testing.T) {
	ctx := context.Background()

	t.Run("filters compose into the query", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		siteID := uuid.New()
		ceiling := 500.0
		age := 25
		rows := pgxmock.NewRows(siteTestColumns).AddRow(
			siteID, "Egyptian Museum Tahrir", "Cairo", "Cairo", "Antiquities collection.",
			"[0.1,0.2,0.3]", []string{"Tutankhamun hall"}, "09:00", "17:00", 2.5,
			450.0, nil, 30.0478, 31.2336,
		)
		mockPool.ExpectQuery("SELECT (.+) FROM sites WHERE 1=1 AND lower\\(city\\) = lower\\(\\$1\\) AND cost_egp <= \\$2 AND \\(age_limit IS NULL OR age_limit <= \\$3\\) AND embedding IS NOT NULL ORDER BY name, id").
			WithArgs("Cairo", ceiling, age).
			WillReturnRows(rows)

		sites, err := repo.GetSites(ctx, types.SiteFilter{
			City:             "Cairo",
			CostCeiling:      &ceiling,
			AgeCeiling:       &age,
			RequireEmbedding: true,
		})
		require.NoError(t, err)
		require.Len(t, sites, 1)
		assert.Equal(t, siteID, sites[0].ID)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, sites[0].Embedding)
		assert.Nil(t, sites[0].AgeLimit)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("empty embedding text scans to nil vector", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		rows := pgxmock.NewRows(siteTestColumns).AddRow(
			uuid.New(), "Khan el-Khalili Bazaar", "Cairo", "Cairo", "Historic souk.",
			"", []string{"Shopping"}, "10:00", "22:00", 2.0,
			0.0, nil, 30.0477, 31.2623,
		)
		mockPool.ExpectQuery("SELECT (.+) FROM sites").WillReturnRows(rows)

		sites, err := repo.GetSites(ctx, types.SiteFilter{})
		require.NoError(t, err)
		require.Len(t, sites, 1)
		assert.Nil(t, sites[0].Embedding)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("query error is wrapped", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		dbErr := errors.New("connection refused")
		mockPool.ExpectQuery("SELECT (.+) FROM sites").WillReturnError(dbErr)

		_, err := repo.GetSites(ctx, types.SiteFilter{})
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to query sites")
	})
}

func TestGetRestaurants(t *testing.T) {
	ctx := context.Background()

	t.Run("meal type and budget bounds applied", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		minBudget := 100.0
		rows := pgxmock.NewRows([]string{
			"id", "name", "city", "meal_type", "average_budget_egp",
			"open_time", "close_time", "latitude", "longitude",
		}).AddRow(
			uuid.New(), "Felfela", "Cairo", "dinner", 250.0,
			"12:00", "23:00", 30.044, 31.234,
		)
		mockPool.ExpectQuery("SELECT (.+) FROM restaurants WHERE 1=1 AND lower\\(city\\) = lower\\(\\$1\\) AND meal_type = \\$2 AND average_budget_egp <= \\$3 AND average_budget_egp > \\$4 ORDER BY name, id").
			WithArgs("Cairo", "dinner", 400.0, minBudget).
			WillReturnRows(rows)

		restaurants, err := repo.GetRestaurants(ctx, types.RestaurantFilter{
			City:         "Cairo",
			MealType:     types.MealTypeDinner,
			MaxBudgetEGP: 400,
			MinBudgetEGP: &minBudget,
		})
		require.NoError(t, err)
		require.Len(t, restaurants, 1)
		assert.Equal(t, types.MealTypeDinner, restaurants[0].MealType)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("no rows yields empty slice without error", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		rows := pgxmock.NewRows([]string{
			"id", "name", "city", "meal_type", "average_budget_egp",
			"open_time", "close_time", "latitude", "longitude",
		})
		mockPool.ExpectQuery("SELECT (.+) FROM restaurants").WithArgs("Aswan").WillReturnRows(rows)

		restaurants, err := repo.GetRestaurants(ctx, types.RestaurantFilter{City: "Aswan"})
		require.NoError(t, err)
		assert.Empty(t, restaurants)
	})
}

func TestUpdateSiteEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the vector in pgvector text format", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		siteID := uuid.New()
		mockPool.ExpectExec("UPDATE sites SET embedding = \\$1::vector WHERE id = \\$2").
			WithArgs("[0.5,0.25]", siteID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateSiteEmbedding(ctx, siteID, []float32{0.5, 0.25})
		require.NoError(t, err)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("missing site reported as error", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		siteID := uuid.New()
		mockPool.ExpectExec("UPDATE sites SET embedding").
			WithArgs("[1]", siteID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateSiteEmbedding(ctx, siteID, []float32{1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestVectorRoundTrip(t *testing.T) {
	t.Run("format then parse preserves values", func(t *testing.T) {
		in := []float32{0.125, -3.5, 42}
		out := parseVector(formatVector(in))
		assert.Equal(t, in, out)
	})

	t.Run("malformed text parses to nil", func(t *testing.T) {
		assert.Nil(t, parseVector("not a vector"))
		assert.Nil(t, parseVector("[1,two,3]"))
		assert.Nil(t, parseVector(""))
	})
}
