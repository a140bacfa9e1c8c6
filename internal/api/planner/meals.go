package planner

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/omarmoh21/egypt-trip-planner/internal/api/catalog"
	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

type mealPlacer struct {
	catalog catalog.Repository
	logger  *slog.Logger
}

// placeMeals fills the three meal slots in fixed order. Breakfast and
// lunch anchor to the day's first site, dinner to the last; each slot gets
// the in-budget restaurant nearest its anchor, first found winning ties.
// A slot with no qualifying candidate stays nil and adds no cost.
func (m *mealPlacer) placeMeals(ctx context.Context, daySites []types.SiteCandidate, city string, foodBudget float64, usedRestaurantIDs map[uuid.UUID]bool) (types.MealPlanDay, float64) {
	var meals types.MealPlanDay
	if len(daySites) == 0 {
		return meals, 0
	}

	first := daySites[0]
	last := daySites[len(daySites)-1]

	var totalCost float64
	for _, slot := range []struct {
		mealType   types.MealType
		anchorLat  float64
		anchorLon  float64
		assignPick func(*types.RestaurantPick)
	}{
		{types.MealTypeBreakfast, first.Latitude, first.Longitude, func(p *types.RestaurantPick) { meals.Breakfast = p }},
		{types.MealTypeLunch, first.Latitude, first.Longitude, func(p *types.RestaurantPick) { meals.Lunch = p }},
		{types.MealTypeDinner, last.Latitude, last.Longitude, func(p *types.RestaurantPick) { meals.Dinner = p }},
	} {
		pick := m.placeSlot(ctx, city, slot.mealType, foodBudget, slot.anchorLat, slot.anchorLon, usedRestaurantIDs)
		if pick == nil {
			continue
		}
		usedRestaurantIDs[pick.ID] = true
		totalCost += pick.AverageBudgetEGP
		slot.assignPick(pick)
	}
	return meals, totalCost
}

func (m *mealPlacer) placeSlot(ctx context.Context, city string, mealType types.MealType, foodBudget, anchorLat, anchorLon float64, usedRestaurantIDs map[uuid.UUID]bool) *types.RestaurantPick {
	candidates, err := m.catalog.GetRestaurants(ctx, types.RestaurantFilter{
		City:         city,
		MealType:     mealType,
		MaxBudgetEGP: foodBudget,
	})
	if err != nil {
		m.logger.DebugContext(ctx, "Restaurant query failed, leaving slot empty",
			slog.String("meal_type", string(mealType)), slog.Any("error", err))
		return nil
	}

	var best *types.RestaurantPick
	for _, c := range candidates {
		if usedRestaurantIDs[c.ID] {
			continue
		}
		dist := haversineKm(anchorLat, anchorLon, c.Latitude, c.Longitude)
		if best == nil || dist < best.DistanceKm {
			best = &types.RestaurantPick{RestaurantCandidate: c, DistanceKm: dist}
		}
	}
	return best
}
