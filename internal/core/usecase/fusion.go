package usecase

import (
	"sort"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

// fuseResults merges normalized lexical and vector result sets into one
// list keyed by chunk identity. The merge is a complete outer join: a chunk
// present in only one source keeps the other side's norm at 0.0 rather than
// being dropped.
func fuseResults(lexical, vector []domain.ScoredResult, wLexical, wVector float64) []domain.ScoredResult {
	acc := make(map[string]domain.ScoredResult, len(lexical)+len(vector))

	for _, r := range lexical {
		acc[r.ID] = r
	}
	for _, r := range vector {
		merged, ok := acc[r.ID]
		if !ok {
			acc[r.ID] = r
			continue
		}
		merged.VectorScore = r.VectorScore
		merged.VectorNorm = r.VectorNorm
		merged = preferRicherResult(merged, r)
		acc[r.ID] = merged
	}

	out := make([]domain.ScoredResult, 0, len(acc))
	for _, r := range acc {
		r.Combined = wLexical*r.LexicalNorm + wVector*r.VectorNorm
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Combined != out[j].Combined {
			return out[i].Combined > out[j].Combined
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// preferRicherResult fills metadata gaps when the same chunk arrives from
// both sources with uneven payloads.
func preferRicherResult(current, candidate domain.ScoredResult) domain.ScoredResult {
	if current.Text == "" && candidate.Text != "" {
		current.Text = candidate.Text
	}
	if current.DocumentName == "" && candidate.DocumentName != "" {
		current.DocumentName = candidate.DocumentName
	}
	if current.PageNumber == 0 && candidate.PageNumber != 0 {
		current.PageNumber = candidate.PageNumber
	}
	if candidate.IsTable {
		current.IsTable = true
	}
	return current
}

func filterMinCombined(results []domain.ScoredResult, minScore float64) []domain.ScoredResult {
	if minScore <= 0 {
		return results
	}
	out := results[:0]
	for _, r := range results {
		if r.Combined >= minScore {
			out = append(out, r)
		}
	}
	return out
}

func trimResults(results []domain.ScoredResult, limit int) []domain.ScoredResult {
	if limit <= 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}
