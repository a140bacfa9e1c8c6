package planner

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/omarmoh21/egypt-trip-planner/app/observability/metrics"
	"github.com/omarmoh21/egypt-trip-planner/config"
	"github.com/omarmoh21/egypt-trip-planner/internal/api/catalog"
	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

// premiumActivities are the optional upgrades injected by the third
// optimizer pass (guide, private access and similar).
var premiumActivities = []string{
	"Private expert guide",
	"Skip-the-line access",
	"Sound and light show",
	"Traditional felucca ride",
}

type budgetOptimizer struct {
	catalog catalog.Repository
	cfg     config.PlannerConfig
	logger  *slog.Logger
}

// optimize raises a day's budget utilization when it lands well under its
// share: first a dinner upgrade, then lunch with the then-remaining
// budget, then premium activity injection on the sites. Every bound comes
// from the planner config; a pass with no qualifying candidate is skipped.
// The passes do not guarantee dailyCost stays at or under dailyBudget.
func (o *budgetOptimizer) optimize(ctx context.Context, day *types.DailyPlan, dailyBudget float64, usedRestaurantIDs map[uuid.UUID]bool) {
	if dailyBudget <= 0 {
		return
	}
	remaining := dailyBudget - day.DailyCostEGP
	if day.DailyCostEGP/dailyBudget >= o.cfg.UtilizationThreshold || remaining <= o.cfg.MinSlackEGP {
		return
	}

	last := anchorSite(day)

	if day.Restaurants.Dinner != nil && last != nil {
		headroom := math.Min(o.cfg.DinnerUpgradeShare*remaining, o.cfg.DinnerUpgradeCapEGP)
		if upgraded := o.upgradeMeal(ctx, day.Restaurants.Dinner, types.MealTypeDinner, headroom, last.Latitude, last.Longitude, usedRestaurantIDs); upgraded != nil {
			day.DailyCostEGP += upgraded.AverageBudgetEGP - day.Restaurants.Dinner.AverageBudgetEGP
			day.Restaurants.Dinner = upgraded
			metrics.Get().OptimizerUpgradesTotal.Add(ctx, 1)
		}
		remaining = dailyBudget - day.DailyCostEGP
	}

	if day.Restaurants.Lunch != nil && len(day.Sites) > 0 && remaining > o.cfg.MinSlackEGP {
		first := day.Sites[0]
		headroom := math.Min(o.cfg.LunchUpgradeShare*remaining, o.cfg.DinnerUpgradeCapEGP)
		if upgraded := o.upgradeMeal(ctx, day.Restaurants.Lunch, types.MealTypeLunch, headroom, first.Latitude, first.Longitude, usedRestaurantIDs); upgraded != nil {
			day.DailyCostEGP += upgraded.AverageBudgetEGP - day.Restaurants.Lunch.AverageBudgetEGP
			day.Restaurants.Lunch = upgraded
			metrics.Get().OptimizerUpgradesTotal.Add(ctx, 1)
		}
		remaining = dailyBudget - day.DailyCostEGP
	}

	for i := range day.Sites {
		if remaining <= o.cfg.PremiumMinSlackEGP {
			break
		}
		extra := math.Min(o.cfg.PremiumShare*remaining, o.cfg.PremiumCapEGP)
		if extra <= 0 {
			break
		}
		added := 0
		for _, activity := range premiumActivities {
			if added >= o.cfg.PremiumMaxActivities {
				break
			}
			if containsString(day.Sites[i].Activities, activity) {
				continue
			}
			day.Sites[i].Activities = append(day.Sites[i].Activities, activity)
			added++
		}
		if added == 0 {
			continue
		}
		day.Sites[i].CostEGP += extra
		day.DailyCostEGP += extra
		remaining = dailyBudget - day.DailyCostEGP
		metrics.Get().OptimizerUpgradesTotal.Add(ctx, 1)
	}
}

// upgradeMeal looks for a strictly more expensive restaurant for the slot
// within current cost + headroom, preferring candidates close to the
// anchor. Returns nil when no qualifying candidate exists.
func (o *budgetOptimizer) upgradeMeal(ctx context.Context, current *types.RestaurantPick, mealType types.MealType, headroom, anchorLat, anchorLon float64, usedRestaurantIDs map[uuid.UUID]bool) *types.RestaurantPick {
	if headroom <= 0 {
		return nil
	}
	minBudget := current.AverageBudgetEGP
	candidates, err := o.catalog.GetRestaurants(ctx, types.RestaurantFilter{
		City:         current.City,
		MealType:     mealType,
		MaxBudgetEGP: current.AverageBudgetEGP + headroom,
		MinBudgetEGP: &minBudget,
	})
	if err != nil {
		o.logger.DebugContext(ctx, "Upgrade query failed, skipping pass",
			slog.String("meal_type", string(mealType)), slog.Any("error", err))
		return nil
	}

	var bestNear, bestFar *types.RestaurantPick
	for _, c := range candidates {
		if usedRestaurantIDs[c.ID] {
			continue
		}
		dist := haversineKm(anchorLat, anchorLon, c.Latitude, c.Longitude)
		pick := &types.RestaurantPick{RestaurantCandidate: c, DistanceKm: dist}
		if dist <= o.cfg.UpgradeRadiusKm {
			if bestNear == nil || pick.AverageBudgetEGP > bestNear.AverageBudgetEGP {
				bestNear = pick
			}
		} else if bestFar == nil || pick.AverageBudgetEGP > bestFar.AverageBudgetEGP {
			bestFar = pick
		}
	}

	chosen := bestNear
	if chosen == nil {
		chosen = bestFar
	}
	if chosen != nil {
		usedRestaurantIDs[chosen.ID] = true
	}
	return chosen
}

func anchorSite(day *types.DailyPlan) *types.SiteCandidate {
	if len(day.Sites) == 0 {
		return nil
	}
	return &day.Sites[len(day.Sites)-1]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
