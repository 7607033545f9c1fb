package usecase

import "github.com/gaffoor434/knowledge-base/internal/core/domain"

// gateResults drops every result below minScore. With requireBoth set, a
// result must additionally clear componentFloor on both normalized axes, so
// an exact lexical hit with zero semantic support cannot pass on a single
// axis alone. An empty gated set means "no confident result" and is never
// replaced by the unfiltered input.
func gateResults(results []domain.ScoredResult, minScore float64, requireBoth bool, componentFloor float64) []domain.ScoredResult {
	out := make([]domain.ScoredResult, 0, len(results))
	for _, r := range results {
		if r.Combined < minScore {
			continue
		}
		if requireBoth && (r.LexicalNorm < componentFloor || r.VectorNorm < componentFloor) {
			continue
		}
		out = append(out, r)
	}
	return out
}
