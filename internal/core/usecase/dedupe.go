package usecase

import (
	"sort"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

// dedupeByID collapses duplicate chunk identities produced by sub-query
// expansion, keeping the highest-scoring variant per identity. First-seen
// order is not significant, only the score comparison.
func dedupeByID(results []domain.ScoredResult) []domain.ScoredResult {
	best := make(map[string]domain.ScoredResult, len(results))
	for _, r := range results {
		existing, ok := best[r.ID]
		if !ok || qualifyingScore(r) > qualifyingScore(existing) {
			best[r.ID] = r
		}
	}

	out := make([]domain.ScoredResult, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if qualifyingScore(out[i]) != qualifyingScore(out[j]) {
			return qualifyingScore(out[i]) > qualifyingScore(out[j])
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// qualifyingScore is the weighted score once weighting has happened,
// otherwise the fused combined score.
func qualifyingScore(r domain.ScoredResult) float64 {
	if r.Weighted != 0 {
		return r.Weighted
	}
	return r.Combined
}
