package planner

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/omarmoh21/egypt-trip-planner/internal/api/catalog"
	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

// Pair selection strategies. Governorate grouping is the default; the
// distance strategy pairs the two geographically closest candidates
// regardless of city and exists as a configurable alternative.
const (
	PairStrategyGovernorate = "governorate"
	PairStrategyDistance    = "distance"
)

type sitePairSelector struct {
	catalog  catalog.Repository
	strategy string
	logger   *slog.Logger
}

// selectPair picks 0-2 sites for one day from the ranked candidates. With
// the governorate strategy, candidates are grouped by normalized
// city/governorate and the group with the highest average similarity wins;
// pairing on average relevance rather than the single best score keeps a
// two-stop day coherent. A lone survivor group is widened through a raw
// city/governorate re-query before settling for a single site.
func (p *sitePairSelector) selectPair(ctx context.Context, ranked []types.SiteCandidate, usedSiteIDs map[uuid.UUID]bool) []types.SiteCandidate {
	available := make([]types.SiteCandidate, 0, len(ranked))
	for _, s := range ranked {
		if !usedSiteIDs[s.ID] {
			available = append(available, s)
		}
	}
	if len(available) == 0 {
		return nil
	}

	if p.strategy == PairStrategyDistance {
		return closestPair(available)
	}

	groups := map[string][]types.SiteCandidate{}
	order := []string{}
	for _, s := range available {
		key := locationKey(s)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	bestKey := ""
	bestAvg := -1.0
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		if avg := averageSimilarity(group); avg > bestAvg {
			bestAvg = avg
			bestKey = key
		}
	}
	if bestKey != "" {
		group := groups[bestKey]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SimilarityScore > group[j].SimilarityScore
		})
		return group[:2]
	}

	// No group has two members. Take the best singleton group and try to
	// widen it by re-querying on the raw city/governorate string, ignoring
	// the embedding and grouping conditions.
	best := available[0]
	for _, s := range available[1:] {
		if s.SimilarityScore > best.SimilarityScore {
			best = s
		}
	}
	if companion, ok := p.widen(ctx, best, usedSiteIDs); ok {
		return []types.SiteCandidate{best, companion}
	}
	return []types.SiteCandidate{best}
}

func (p *sitePairSelector) widen(ctx context.Context, anchor types.SiteCandidate, usedSiteIDs map[uuid.UUID]bool) (types.SiteCandidate, bool) {
	siblings, err := p.catalog.GetSitesByRawLocation(ctx, anchor.City, anchor.Governorate)
	if err != nil {
		p.logger.DebugContext(ctx, "Widening query failed", slog.Any("error", err))
		return types.SiteCandidate{}, false
	}
	for _, s := range siblings {
		if s.ID == anchor.ID || usedSiteIDs[s.ID] {
			continue
		}
		if s.SimilarityScore == 0 {
			s.SimilarityScore = syntheticScoreLow
		}
		return s, true
	}
	return types.SiteCandidate{}, false
}

// closestPair returns the two candidates with the minimum haversine
// separation, ordered by similarity. A single candidate is returned alone.
func closestPair(candidates []types.SiteCandidate) []types.SiteCandidate {
	if len(candidates) == 1 {
		return []types.SiteCandidate{candidates[0]}
	}
	bestI, bestJ := 0, 1
	bestDist := haversineKm(candidates[0].Latitude, candidates[0].Longitude, candidates[1].Latitude, candidates[1].Longitude)
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			d := haversineKm(candidates[i].Latitude, candidates[i].Longitude, candidates[j].Latitude, candidates[j].Longitude)
			if d < bestDist {
				bestDist = d
				bestI, bestJ = i, j
			}
		}
	}
	pair := []types.SiteCandidate{candidates[bestI], candidates[bestJ]}
	if pair[1].SimilarityScore > pair[0].SimilarityScore {
		pair[0], pair[1] = pair[1], pair[0]
	}
	return pair
}

func averageSimilarity(group []types.SiteCandidate) float64 {
	if len(group) == 0 {
		return 0
	}
	var sum float64
	for _, s := range group {
		sum += s.SimilarityScore
	}
	return sum / float64(len(group))
}
