package planner

import (
	"math"
	"sort"

	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

// Synthetic score range handed to candidates when the catalog has no
// usable vectors for a query. Scores decrease with catalog order so the
// downstream pair selection stays deterministic.
const (
	syntheticScoreHigh = 0.85
	syntheticScoreLow  = 0.65
)

// rankFilters are the relational pre-filters applied before similarity
// scoring. Nil pointer fields are ignored.
type rankFilters struct {
	City        string
	CostCeiling *float64
	AgeCeiling  *int
}

// rankSites scores candidates against the query embedding and returns the
// top K by cosine similarity, descending. Candidates without an embedding
// of the query's dimensionality are dropped; if that leaves nothing, the
// relationally filtered set is returned with synthetic scores instead, so
// callers never see an empty list purely due to missing vectors.
func rankSites(candidates []types.SiteCandidate, queryEmbedding []float32, filters rankFilters, topK int) []types.SiteCandidate {
	filtered := make([]types.SiteCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !matchesFilters(c, filters) {
			continue
		}
		filtered = append(filtered, c)
	}

	scored := make([]types.SiteCandidate, 0, len(filtered))
	for _, c := range filtered {
		if len(c.Embedding) == 0 || len(c.Embedding) != len(queryEmbedding) {
			continue
		}
		c.SimilarityScore = cosineSimilarity(c.Embedding, queryEmbedding)
		scored = append(scored, c)
	}

	if len(scored) == 0 {
		// No usable vectors: keep the relational result with synthetic
		// mid-to-high scores in catalog order.
		scored = withSyntheticScores(filtered)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func matchesFilters(c types.SiteCandidate, filters rankFilters) bool {
	if filters.City != "" && normalizeLocation(c.City) != normalizeLocation(filters.City) {
		return false
	}
	if filters.CostCeiling != nil && c.CostEGP > *filters.CostCeiling {
		return false
	}
	if filters.AgeCeiling != nil && c.AgeLimit != nil && *c.AgeLimit > *filters.AgeCeiling {
		return false
	}
	return true
}

func withSyntheticScores(candidates []types.SiteCandidate) []types.SiteCandidate {
	out := make([]types.SiteCandidate, len(candidates))
	span := syntheticScoreHigh - syntheticScoreLow
	denom := float64(len(candidates) - 1)
	if denom < 1 {
		denom = 1
	}
	for i, c := range candidates {
		c.SimilarityScore = syntheticScoreHigh - span*float64(i)/denom
		out[i] = c
	}
	return out
}

// cosineSimilarity is dot(a,b)/(|a||b|). A zero-magnitude vector yields 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
