package types

import "github.com/google/uuid"

type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
)

// SiteCandidate is a tourist site read from the catalog. SimilarityScore
// is populated by ranking for the current planning run only and is never
// written back.
type SiteCandidate struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	City              string    `json:"city"`
	Governorate       string    `json:"governorate"`
	Description       string    `json:"description,omitempty"`
	Embedding         []float32 `json:"-"`
	Activities        []string  `json:"activities,omitempty"`
	OpenTime          string    `json:"open_time"`
	CloseTime         string    `json:"close_time"`
	AverageVisitHours float64   `json:"average_visit_hours"`
	CostEGP           float64   `json:"cost_egp"`
	AgeLimit          *int      `json:"age_limit,omitempty"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	SimilarityScore   float64   `json:"similarity_score,omitempty"`
}

type RestaurantCandidate struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	City             string    `json:"city"`
	MealType         MealType  `json:"meal_type"`
	AverageBudgetEGP float64   `json:"average_budget_egp"`
	OpenTime         string    `json:"open_time"`
	CloseTime        string    `json:"close_time"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
}

// RestaurantPick is a restaurant chosen for a meal slot together with its
// haversine distance to the slot's anchor point.
type RestaurantPick struct {
	RestaurantCandidate
	DistanceKm float64 `json:"distance_km"`
}

// TripRequest is the validated traveler profile driving one planning run.
type TripRequest struct {
	Age            int      `json:"age"`
	TotalBudgetEGP float64  `json:"total_budget_egp"`
	Days           int      `json:"days"`
	Interests      []string `json:"interests"`
	Cities         []string `json:"cities,omitempty"` // empty means nationwide
}

type MealPlanDay struct {
	Breakfast *RestaurantPick `json:"breakfast,omitempty"`
	Lunch     *RestaurantPick `json:"lunch,omitempty"`
	Dinner    *RestaurantPick `json:"dinner,omitempty"`
}

// DailyPlan holds one day of the itinerary. All sites (and, outside the
// degraded single-site case, all restaurants) resolve to the same city.
type DailyPlan struct {
	DayIndex               int             `json:"day_index"` // 1-based
	AssignedCity           string          `json:"assigned_city,omitempty"`
	Sites                  []SiteCandidate `json:"sites"`
	DistanceBetweenSitesKm float64         `json:"distance_between_sites_km"`
	Restaurants            MealPlanDay     `json:"restaurants"`
	DailyCostEGP           float64         `json:"daily_cost_egp"`
	NarrativeItinerary     string          `json:"narrative_itinerary"`
}

// TripPreferences echoes the request plus the values computed once per trip.
type TripPreferences struct {
	TripRequest
	DailyBudgetEGP float64  `json:"daily_budget_egp"`
	CityAllocation []string `json:"city_allocation"`
}

type TripPlan struct {
	Preferences        TripPreferences `json:"preferences"`
	Days               []DailyPlan     `json:"days"`
	TotalCostEGP       float64         `json:"total_cost_egp"`
	RemainingBudgetEGP float64         `json:"remaining_budget_egp"`
}

// SiteFilter narrows catalog site reads. Nil pointer fields are ignored.
type SiteFilter struct {
	City             string
	CostCeiling      *float64
	AgeCeiling       *int
	RequireEmbedding bool
	Limit            int
}

// RestaurantFilter narrows catalog restaurant reads. MinBudgetEGP is the
// exclusive floor used by upgrade passes ("strictly more expensive").
type RestaurantFilter struct {
	City         string
	MealType     MealType
	MaxBudgetEGP float64
	MinBudgetEGP *float64
	Limit        int
}
