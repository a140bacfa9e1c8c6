package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/omarmoh21/egypt-trip-planner/app/observability/metrics"
	"github.com/omarmoh21/egypt-trip-planner/config"
	"github.com/omarmoh21/egypt-trip-planner/internal/api/catalog"
	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the planning engine's single exposed operation.
type Service interface {
	PlanTrip(ctx context.Context, req types.TripRequest) (*types.TripPlan, error)
}

// Embedder produces a query vector for free text. Implemented by
// generativeAI.EmbeddingService.
type Embedder interface {
	GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Narrator produces reader-facing prose for a structured day plan.
// Implemented by generativeAI.Narrator.
type Narrator interface {
	DayNarrative(ctx context.Context, day types.DailyPlan, req types.TripRequest) (string, error)
}

// ValidationError rejects a malformed TripRequest before any planning
// work; it is the only error class PlanTrip surfaces to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trip request: %s %s", e.Field, e.Reason)
}

type ServiceImpl struct {
	logger    *slog.Logger
	catalog   catalog.Repository
	embedder  Embedder
	narrator  Narrator
	cfg       config.PlannerConfig
	pairs     *sitePairSelector
	meals     *mealPlacer
	optimizer *budgetOptimizer
}

func NewServiceImpl(catalogRepo catalog.Repository, embedder Embedder, narrator Narrator, cfg config.PlannerConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		catalog:   catalogRepo,
		embedder:  embedder,
		narrator:  narrator,
		cfg:       cfg,
		pairs:     &sitePairSelector{catalog: catalogRepo, strategy: cfg.PairStrategy, logger: logger},
		meals:     &mealPlacer{catalog: catalogRepo, logger: logger},
		optimizer: &budgetOptimizer{catalog: catalogRepo, cfg: cfg, logger: logger},
	}
}

// PlanTrip assembles the whole itinerary. Days are built strictly in
// order: later days depend on the used-site and used-restaurant sets
// accumulated by earlier ones, so the loop must not be parallelized.
func (s *ServiceImpl) PlanTrip(ctx context.Context, req types.TripRequest) (*types.TripPlan, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "PlanTrip", trace.WithAttributes(
		attribute.Int("trip.days", req.Days),
		attribute.Float64("trip.budget_egp", req.TotalBudgetEGP),
		attribute.Int("trip.cities", len(req.Cities)),
	))
	defer span.End()
	start := time.Now()

	if err := validateRequest(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Request validation failed")
		return nil, err
	}

	dailyBudget := req.TotalBudgetEGP / float64(req.Days)
	allocation := allocateCities(req.Cities, req.Days)

	queryEmbedding, err := s.embedder.GenerateQueryEmbedding(ctx, strings.Join(req.Interests, ", "))
	if err != nil {
		// Semantic ranking degrades to the synthetic-score fallback.
		s.logger.WarnContext(ctx, "Query embedding unavailable, ranking falls back to synthetic scores", slog.Any("error", err))
		queryEmbedding = nil
	}

	usedSites := map[uuid.UUID]bool{}
	usedRestaurants := map[uuid.UUID]bool{}
	days := make([]types.DailyPlan, 0, req.Days)

	for i := 0; i < req.Days; i++ {
		if ctx.Err() != nil {
			// Deadline hit: return whatever days are already assembled.
			s.logger.WarnContext(ctx, "Planning cancelled, returning completed days", slog.Int("completed", i))
			break
		}
		days = append(days, s.buildDaySafe(ctx, i, allocation[i], req, dailyBudget, queryEmbedding, usedSites, usedRestaurants))
	}

	var totalCost float64
	for _, d := range days {
		totalCost += d.DailyCostEGP
	}

	plan := &types.TripPlan{
		Preferences: types.TripPreferences{
			TripRequest:    req,
			DailyBudgetEGP: dailyBudget,
			CityAllocation: allocation,
		},
		Days:               days,
		TotalCostEGP:       totalCost,
		RemainingBudgetEGP: req.TotalBudgetEGP - totalCost,
	}

	metrics.Get().PlansBuiltTotal.Add(ctx, 1)
	metrics.Get().PlanBuildDurationSeconds.Record(ctx, time.Since(start).Seconds())
	s.logger.InfoContext(ctx, "Trip plan assembled",
		slog.Int("days", len(days)),
		slog.Float64("total_cost_egp", totalCost),
		slog.Float64("remaining_budget_egp", plan.RemainingBudgetEGP),
	)
	span.SetAttributes(attribute.Float64("trip.total_cost_egp", totalCost))
	span.SetStatus(codes.Ok, "Trip plan assembled")
	return plan, nil
}

// buildDaySafe shields the day loop: any panic while assembling one day
// turns into a zero-cost placeholder instead of aborting the whole trip.
func (s *ServiceImpl) buildDaySafe(ctx context.Context, dayIdx int, city string, req types.TripRequest, dailyBudget float64, queryEmbedding []float32, usedSites, usedRestaurants map[uuid.UUID]bool) (day types.DailyPlan) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Day build failed, substituting placeholder",
				slog.Int("day", dayIdx+1), slog.Any("panic", r))
			day = placeholderDay(dayIdx, city)
		}
	}()
	return s.buildDay(ctx, dayIdx, city, req, dailyBudget, queryEmbedding, usedSites, usedRestaurants)
}

func (s *ServiceImpl) buildDay(ctx context.Context, dayIdx int, city string, req types.TripRequest, dailyBudget float64, queryEmbedding []float32, usedSites, usedRestaurants map[uuid.UUID]bool) types.DailyPlan {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "buildDay", trace.WithAttributes(
		attribute.Int("day.index", dayIdx+1),
		attribute.String("day.city", city),
	))
	defer span.End()

	sites := s.selectDaySites(ctx, dayIdx, city, req, dailyBudget, queryEmbedding, usedSites)
	for _, site := range sites {
		usedSites[site.ID] = true
	}

	var pairDistance float64
	if len(sites) == 2 {
		pairDistance = haversineKm(sites[0].Latitude, sites[0].Longitude, sites[1].Latitude, sites[1].Longitude)
	}

	mealCity := city
	if mealCity == "" && len(sites) > 0 {
		mealCity = sites[0].City
	}
	mealBudget := dailyBudget * s.cfg.FoodBudgetShare / 3
	mealPlan, mealCost := s.meals.placeMeals(ctx, sites, mealCity, mealBudget, usedRestaurants)

	dailyCost := mealCost
	for _, site := range sites {
		dailyCost += site.CostEGP
	}

	day := types.DailyPlan{
		DayIndex:               dayIdx + 1,
		AssignedCity:           city,
		Sites:                  sites,
		DistanceBetweenSitesKm: pairDistance,
		Restaurants:            mealPlan,
		DailyCostEGP:           dailyCost,
	}

	s.optimizer.optimize(ctx, &day, dailyBudget, usedRestaurants)

	narrative, err := s.narrator.DayNarrative(ctx, day, req)
	if err != nil || narrative == "" {
		narrative = fallbackNarrative(day)
	}
	day.NarrativeItinerary = narrative

	span.SetAttributes(
		attribute.Int("day.sites", len(day.Sites)),
		attribute.Float64("day.cost_egp", day.DailyCostEGP),
	)
	return day
}

// selectDaySites retrieves, ranks and pairs the day's sites. Day 1 opens
// with the fixed Giza pair whenever the assigned city allows it.
func (s *ServiceImpl) selectDaySites(ctx context.Context, dayIdx int, city string, req types.TripRequest, dailyBudget float64, queryEmbedding []float32, usedSites map[uuid.UUID]bool) []types.SiteCandidate {
	if dayIdx == 0 && firstDayCityCompatible(city) {
		return defaultFirstDaySites()
	}

	siteCeiling := dailyBudget * s.cfg.SiteBudgetShare
	filter := types.SiteFilter{
		City:             city,
		CostCeiling:      &siteCeiling,
		AgeCeiling:       &req.Age,
		RequireEmbedding: true,
	}
	candidates, err := s.catalog.GetSites(ctx, filter)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			s.logger.WarnContext(ctx, "Site retrieval failed, retrying without embedding filter", slog.Any("error", err))
		}
		filter.RequireEmbedding = false
		candidates, err = s.catalog.GetSites(ctx, filter)
		if err != nil {
			s.logger.WarnContext(ctx, "Site retrieval failed, using regional fallback", slog.Any("error", err))
			candidates = nil
		}
	}

	ranked := rankSites(candidates, queryEmbedding, rankFilters{
		City:        city,
		CostCeiling: &siteCeiling,
		AgeCeiling:  &req.Age,
	}, s.cfg.TopK)

	sites := s.pairs.selectPair(ctx, ranked, usedSites)
	if len(sites) == 0 {
		metrics.Get().FallbackDaysTotal.Add(ctx, 1)
		sites = fallbackPairForDay(dayIdx, city)
	}
	return sites
}

func placeholderDay(dayIdx int, city string) types.DailyPlan {
	day := types.DailyPlan{
		DayIndex:     dayIdx + 1,
		AssignedCity: city,
		Sites:        []types.SiteCandidate{},
	}
	day.NarrativeItinerary = fallbackNarrative(day)
	return day
}

func validateRequest(req types.TripRequest) error {
	if req.Age < 5 || req.Age > 100 {
		return &ValidationError{Field: "age", Reason: "must be between 5 and 100"}
	}
	if req.TotalBudgetEGP <= 0 {
		return &ValidationError{Field: "total_budget_egp", Reason: "must be greater than zero"}
	}
	if req.Days < 1 || req.Days > 30 {
		return &ValidationError{Field: "days", Reason: "must be between 1 and 30"}
	}
	if len(req.Interests) == 0 {
		return &ValidationError{Field: "interests", Reason: "must not be empty"}
	}
	for _, interest := range req.Interests {
		if strings.TrimSpace(interest) == "" {
			return &ValidationError{Field: "interests", Reason: "must not contain blank entries"}
		}
	}
	return nil
}
