package planner

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

// normalizeLocation lower-cases and trims a city/governorate string for
// grouping and comparison.
func normalizeLocation(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// locationKey is the grouping key for the pair selector: governorate when
// present, city otherwise.
func locationKey(s types.SiteCandidate) string {
	if key := normalizeLocation(s.Governorate); key != "" {
		return key
	}
	return normalizeLocation(s.City)
}

// firstDayCityCompatible reports whether the canonical first-day pair
// (Giza pyramids + national museum) fits the assigned city.
func firstDayCityCompatible(city string) bool {
	switch normalizeLocation(city) {
	case "", "cairo", "giza":
		return true
	}
	return false
}

// defaultFirstDaySites is the fixed opener for trips starting in or around
// Cairo. Fresh ids per call keep the trip-wide no-reuse invariant intact.
func defaultFirstDaySites() []types.SiteCandidate {
	return []types.SiteCandidate{
		{
			ID:                uuid.New(),
			Name:              "Pyramids of Giza",
			City:              "Giza",
			Governorate:       "Giza",
			Description:       "The last standing wonder of the ancient world.",
			Activities:        []string{"Great Pyramid tour", "Sphinx viewpoint", "Camel ride"},
			OpenTime:          "08:00",
			CloseTime:         "17:00",
			AverageVisitHours: 3.5,
			CostEGP:           540,
			Latitude:          29.9792,
			Longitude:         31.1342,
			SimilarityScore:   syntheticScoreHigh,
		},
		{
			ID:                uuid.New(),
			Name:              "Grand Egyptian Museum",
			City:              "Giza",
			Governorate:       "Giza",
			Description:       "The world's largest archaeological museum, home to the Tutankhamun collection.",
			Activities:        []string{"Tutankhamun galleries", "Grand staircase"},
			OpenTime:          "09:00",
			CloseTime:         "18:00",
			AverageVisitHours: 3,
			CostEGP:           600,
			Latitude:          29.9936,
			Longitude:         31.1195,
			SimilarityScore:   syntheticScoreHigh,
		},
	}
}

type fallbackSite struct {
	name, city, governorate, openTime, closeTime string
	visitHours, costEGP, lat, lon                float64
}

// regionFallbacks are the hardcoded default pairs used when retrieval
// yields nothing for a day, keyed by normalized city. The empty key is
// the nationwide default.
var regionFallbacks = map[string][][2]fallbackSite{
	"cairo": {
		{
			{"Egyptian Museum Tahrir", "Cairo", "Cairo", "09:00", "17:00", 2.5, 450, 30.0478, 31.2336},
			{"Salah El-Din Citadel", "Cairo", "Cairo", "08:00", "17:00", 2, 450, 30.0299, 31.2599},
		},
		{
			{"Khan el-Khalili Bazaar", "Cairo", "Cairo", "10:00", "22:00", 2, 0, 30.0477, 31.2623},
			{"Al-Muizz Street", "Cairo", "Cairo", "09:00", "21:00", 1.5, 100, 30.0511, 31.2609},
		},
	},
	"luxor": {
		{
			{"Karnak Temple", "Luxor", "Luxor", "06:00", "17:30", 3, 450, 25.7188, 32.6573},
			{"Luxor Temple", "Luxor", "Luxor", "06:00", "21:00", 2, 400, 25.6995, 32.6391},
		},
		{
			{"Valley of the Kings", "Luxor", "Luxor", "06:00", "17:00", 3, 600, 25.7402, 32.6014},
			{"Hatshepsut Temple", "Luxor", "Luxor", "06:00", "17:00", 1.5, 360, 25.7379, 32.6065},
		},
	},
	"aswan": {
		{
			{"Philae Temple", "Aswan", "Aswan", "07:00", "17:00", 2, 450, 24.0254, 32.8847},
			{"Nubian Museum", "Aswan", "Aswan", "09:00", "17:00", 2, 300, 24.0743, 32.8989},
		},
	},
	"alexandria": {
		{
			{"Bibliotheca Alexandrina", "Alexandria", "Alexandria", "10:00", "19:00", 2, 70, 31.2089, 29.9092},
			{"Qaitbay Citadel", "Alexandria", "Alexandria", "09:00", "17:00", 1.5, 60, 31.2135, 29.8853},
		},
	},
	"": {
		{
			{"Pyramids of Giza", "Giza", "Giza", "08:00", "17:00", 3.5, 540, 29.9792, 31.1342},
			{"Egyptian Museum Tahrir", "Cairo", "Cairo", "09:00", "17:00", 2.5, 450, 30.0478, 31.2336},
		},
		{
			{"Karnak Temple", "Luxor", "Luxor", "06:00", "17:30", 3, 450, 25.7188, 32.6573},
			{"Luxor Temple", "Luxor", "Luxor", "06:00", "21:00", 2, 400, 25.6995, 32.6391},
		},
		{
			{"Philae Temple", "Aswan", "Aswan", "07:00", "17:00", 2, 450, 24.0254, 32.8847},
			{"Abu Simbel", "Aswan", "Aswan", "05:00", "18:00", 3, 600, 22.3372, 31.6258},
		},
	},
}

// fallbackPairForDay returns the hardcoded default pair for the given day
// index and region, cycling through the region's pairs. Fresh ids per call
// keep fallback days disjoint across the trip.
func fallbackPairForDay(dayIdx int, city string) []types.SiteCandidate {
	pairs, ok := regionFallbacks[normalizeLocation(city)]
	if !ok {
		pairs = regionFallbacks[""]
	}
	pair := pairs[dayIdx%len(pairs)]

	out := make([]types.SiteCandidate, 0, 2)
	for _, f := range pair {
		out = append(out, types.SiteCandidate{
			ID:                uuid.New(),
			Name:              f.name,
			City:              f.city,
			Governorate:       f.governorate,
			OpenTime:          f.openTime,
			CloseTime:         f.closeTime,
			AverageVisitHours: f.visitHours,
			CostEGP:           f.costEGP,
			Latitude:          f.lat,
			Longitude:         f.lon,
			SimilarityScore:   syntheticScoreLow,
		})
	}
	return out
}

// fallbackNarrative builds the deterministic templated narrative used when
// the generated one is unavailable.
func fallbackNarrative(day types.DailyPlan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Day %d", day.DayIndex))
	if day.AssignedCity != "" {
		sb.WriteString(" in " + day.AssignedCity)
	}
	sb.WriteString(".")
	if b := day.Restaurants.Breakfast; b != nil {
		sb.WriteString(fmt.Sprintf(" Breakfast at %s.", b.Name))
	}
	for i, s := range day.Sites {
		switch i {
		case 0:
			sb.WriteString(fmt.Sprintf(" Visit %s (opens %s, around %.1f hours).", s.Name, s.OpenTime, s.AverageVisitHours))
		default:
			sb.WriteString(fmt.Sprintf(" Then continue to %s (closes %s).", s.Name, s.CloseTime))
		}
	}
	if l := day.Restaurants.Lunch; l != nil {
		sb.WriteString(fmt.Sprintf(" Lunch at %s.", l.Name))
	}
	if d := day.Restaurants.Dinner; d != nil {
		sb.WriteString(fmt.Sprintf(" Dinner at %s.", d.Name))
	}
	if len(day.Sites) == 0 {
		sb.WriteString(" Free day at leisure.")
	}
	return sb.String()
}
