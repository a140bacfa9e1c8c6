package planner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		v := []float32{0.5, 0.3, 0.2}
		assert.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 2}, []float32{-1, -2}), 1e-9)
	})

	t.Run("zero-magnitude vector scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	})

	t.Run("mismatched dimensions score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})
}

func siteWithEmbedding(name, city string, cost float64, embedding []float32) types.SiteCandidate {
	return types.SiteCandidate{
		ID:        uuid.New(),
		Name:      name,
		City:      city,
		CostEGP:   cost,
		Embedding: embedding,
	}
}

func TestRankSites(t *testing.T) {
	query := []float32{1, 0}

	t.Run("orders by similarity descending", func(t *testing.T) {
		candidates := []types.SiteCandidate{
			siteWithEmbedding("far", "Cairo", 100, []float32{0, 1}),
			siteWithEmbedding("close", "Cairo", 100, []float32{1, 0.1}),
			siteWithEmbedding("middle", "Cairo", 100, []float32{1, 1}),
		}
		ranked := rankSites(candidates, query, rankFilters{}, 0)
		require.Len(t, ranked, 3)
		assert.Equal(t, "close", ranked[0].Name)
		assert.Equal(t, "middle", ranked[1].Name)
		assert.Equal(t, "far", ranked[2].Name)
	})

	t.Run("truncates to topK", func(t *testing.T) {
		candidates := []types.SiteCandidate{
			siteWithEmbedding("a", "Cairo", 100, []float32{1, 0}),
			siteWithEmbedding("b", "Cairo", 100, []float32{1, 1}),
			siteWithEmbedding("c", "Cairo", 100, []float32{0, 1}),
		}
		ranked := rankSites(candidates, query, rankFilters{}, 2)
		assert.Len(t, ranked, 2)
	})

	t.Run("applies cost ceiling", func(t *testing.T) {
		ceiling := 150.0
		candidates := []types.SiteCandidate{
			siteWithEmbedding("cheap", "Cairo", 100, []float32{1, 0}),
			siteWithEmbedding("pricey", "Cairo", 400, []float32{1, 0}),
		}
		ranked := rankSites(candidates, query, rankFilters{CostCeiling: &ceiling}, 0)
		require.Len(t, ranked, 1)
		assert.Equal(t, "cheap", ranked[0].Name)
	})

	t.Run("applies age ceiling only when site has a limit", func(t *testing.T) {
		age := 10
		limit := 18
		restricted := siteWithEmbedding("restricted", "Cairo", 100, []float32{1, 0})
		restricted.AgeLimit = &limit
		open := siteWithEmbedding("open", "Cairo", 100, []float32{1, 0})
		ranked := rankSites([]types.SiteCandidate{restricted, open}, query, rankFilters{AgeCeiling: &age}, 0)
		require.Len(t, ranked, 1)
		assert.Equal(t, "open", ranked[0].Name)
	})

	t.Run("city filter is case insensitive", func(t *testing.T) {
		candidates := []types.SiteCandidate{
			siteWithEmbedding("match", "CAIRO", 100, []float32{1, 0}),
			siteWithEmbedding("other", "Luxor", 100, []float32{1, 0}),
		}
		ranked := rankSites(candidates, query, rankFilters{City: "cairo"}, 0)
		require.Len(t, ranked, 1)
		assert.Equal(t, "match", ranked[0].Name)
	})

	t.Run("synthetic fallback when no usable vectors", func(t *testing.T) {
		candidates := []types.SiteCandidate{
			siteWithEmbedding("first", "Cairo", 100, nil),
			siteWithEmbedding("second", "Cairo", 100, nil),
			siteWithEmbedding("third", "Cairo", 100, nil),
		}
		ranked := rankSites(candidates, query, rankFilters{}, 0)
		require.Len(t, ranked, 3)
		assert.Equal(t, "first", ranked[0].Name)
		assert.InDelta(t, syntheticScoreHigh, ranked[0].SimilarityScore, 1e-9)
		assert.InDelta(t, syntheticScoreLow, ranked[2].SimilarityScore, 1e-9)
	})

	t.Run("drops candidates with mismatched dimensionality", func(t *testing.T) {
		candidates := []types.SiteCandidate{
			siteWithEmbedding("good", "Cairo", 100, []float32{1, 0}),
			siteWithEmbedding("short", "Cairo", 100, []float32{1}),
		}
		ranked := rankSites(candidates, query, rankFilters{}, 0)
		require.Len(t, ranked, 1)
		assert.Equal(t, "good", ranked[0].Name)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		candidates := []types.SiteCandidate{
			siteWithEmbedding("a", "Cairo", 100, []float32{1, 0.5}),
			siteWithEmbedding("b", "Cairo", 100, []float32{1, 0.5}),
			siteWithEmbedding("c", "Cairo", 100, []float32{1, 0}),
		}
		first := rankSites(candidates, query, rankFilters{}, 0)
		for i := 0; i < 10; i++ {
			again := rankSites(candidates, query, rankFilters{}, 0)
			assert.Equal(t, first, again)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, rankSites(nil, query, rankFilters{}, 5))
	})
}
