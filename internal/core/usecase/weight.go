package usecase

import (
	"sort"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

// applySourceWeights multiplies each result's rerank score by its source
// document's trust weight and re-sorts descending by the weighted score.
func applySourceWeights(results []domain.ScoredResult, weights map[string]float64, defaultWeight float64) []domain.ScoredResult {
	if defaultWeight <= 0 {
		defaultWeight = 1.0
	}
	for i := range results {
		w, ok := weights[results[i].DocumentName]
		if !ok || w <= 0 {
			w = defaultWeight
		}
		results[i].Weighted = results[i].RerankScore * w
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Weighted != results[j].Weighted {
			return results[i].Weighted > results[j].Weighted
		}
		return results[i].ID < results[j].ID
	})
	return results
}
