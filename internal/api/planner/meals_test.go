package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

func restaurant(name string, budget, lat, lon float64) types.RestaurantCandidate {
	return types.RestaurantCandidate{
		ID:               uuid.New(),
		Name:             name,
		City:             "Cairo",
		AverageBudgetEGP: budget,
		Latitude:         lat,
		Longitude:        lon,
	}
}

func TestPlaceMeals(t *testing.T) {
	ctx := context.Background()

	firstSite := types.SiteCandidate{ID: uuid.New(), Name: "Museum", City: "Cairo", Latitude: 30.0478, Longitude: 31.2336}
	lastSite := types.SiteCandidate{ID: uuid.New(), Name: "Citadel", City: "Cairo", Latitude: 30.0299, Longitude: 31.2599}
	sites := []types.SiteCandidate{firstSite, lastSite}

	t.Run("each slot gets the nearest candidate to its anchor", func(t *testing.T) {
		mockCatalog := new(MockCatalogRepository)
		placer := &mealPlacer{catalog: mockCatalog, logger: testLogger()}

		nearMuseum := restaurant("Tahrir Eats", 100, 30.0480, 31.2340)
		nearCitadel := restaurant("Citadel Grill", 120, 30.0300, 31.2600)
		midway := restaurant("Midway Cafe", 90, 30.0390, 31.2470)

		mockCatalog.On("GetRestaurants", mock.Anything, mock.MatchedBy(func(f types.RestaurantFilter) bool {
			return f.MealType == types.MealTypeBreakfast
		})).Return([]types.RestaurantCandidate{nearCitadel, nearMuseum, midway}, nil).Once()
		mockCatalog.On("GetRestaurants", mock.Anything, mock.MatchedBy(func(f types.RestaurantFilter) bool {
			return f.MealType == types.MealTypeLunch
		})).Return([]types.RestaurantCandidate{nearCitadel, nearMuseum, midway}, nil).Once()
		mockCatalog.On("GetRestaurants", mock.Anything, mock.MatchedBy(func(f types.RestaurantFilter) bool {
			return f.MealType == types.MealTypeDinner
		})).Return([]types.RestaurantCandidate{nearCitadel, nearMuseum, midway}, nil).Once()

		meals, cost := placer.placeMeals(ctx, sites, "Cairo", 200, map[uuid.UUID]bool{})

		require.NotNil(t, meals.Breakfast)
		assert.Equal(t, "Tahrir Eats", meals.Breakfast.Name)
		// Lunch shares the breakfast anchor; with Tahrir Eats taken it falls
		// to the midway option rather than the one by the second site.
		require.NotNil(t, meals.Lunch)
		assert.Equal(t, "Midway Cafe", meals.Lunch.Name)
		require.NotNil(t, meals.Dinner)
		assert.Equal(t, "Citadel Grill", meals.Dinner.Name)
		assert.InDelta(t, 310, cost, 1e-9)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("no sites means no meals", func(t *testing.T) {
		mockCatalog := new(MockCatalogRepository)
		placer := &mealPlacer{catalog: mockCatalog, logger: testLogger()}

		meals, cost := placer.placeMeals(ctx, nil, "Cairo", 200, map[uuid.UUID]bool{})
		assert.Nil(t, meals.Breakfast)
		assert.Nil(t, meals.Lunch)
		assert.Nil(t, meals.Dinner)
		assert.Zero(t, cost)
		mockCatalog.AssertNotCalled(t, "GetRestaurants")
	})

	t.Run("query failure leaves the slot empty", func(t *testing.T) {
		mockCatalog := new(MockCatalogRepository)
		placer := &mealPlacer{catalog: mockCatalog, logger: testLogger()}

		mockCatalog.On("GetRestaurants", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused")).Times(3)

		meals, cost := placer.placeMeals(ctx, sites, "Cairo", 200, map[uuid.UUID]bool{})
		assert.Nil(t, meals.Breakfast)
		assert.Nil(t, meals.Lunch)
		assert.Nil(t, meals.Dinner)
		assert.Zero(t, cost)
	})

	t.Run("already used restaurants are skipped", func(t *testing.T) {
		mockCatalog := new(MockCatalogRepository)
		placer := &mealPlacer{catalog: mockCatalog, logger: testLogger()}

		only := restaurant("Only Option", 100, 30.0480, 31.2340)
		mockCatalog.On("GetRestaurants", mock.Anything, mock.Anything).
			Return([]types.RestaurantCandidate{only}, nil).Times(3)

		used := map[uuid.UUID]bool{only.ID: true}
		meals, cost := placer.placeMeals(ctx, sites, "Cairo", 200, used)
		assert.Nil(t, meals.Breakfast)
		assert.Nil(t, meals.Lunch)
		assert.Nil(t, meals.Dinner)
		assert.Zero(t, cost)
	})

	t.Run("distance to anchor is recorded", func(t *testing.T) {
		mockCatalog := new(MockCatalogRepository)
		placer := &mealPlacer{catalog: mockCatalog, logger: testLogger()}

		only := restaurant("Only Option", 100, 30.0480, 31.2340)
		mockCatalog.On("GetRestaurants", mock.Anything, mock.Anything).
			Return([]types.RestaurantCandidate{only}, nil).Times(3)

		meals, _ := placer.placeMeals(ctx, sites, "Cairo", 200, map[uuid.UUID]bool{})
		require.NotNil(t, meals.Breakfast)
		assert.Greater(t, meals.Breakfast.DistanceKm, 0.0)
		assert.Less(t, meals.Breakfast.DistanceKm, 1.0)
	})
}
